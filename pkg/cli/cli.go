package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/drumvis/pkg/clock"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	MIDIPath   string        // 起動時に読み込むMIDIファイル（省略可）
	ConfigPath string        // 表示設定YAMLのパス（空なら自動検出）
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	LogLevel   string        // ログレベル（debug, info, warn, error）
	BPM        int           // 初期BPM（0はデフォルト）
	Speed      float64       // 初期速度倍率（0はデフォルト）
	Headless   bool          // ヘッドレスモード
	TUI        bool          // ターミナル表示モード
	Autoplay   bool          // 読み込み後すぐに再生
	ShowHelp   bool          // ヘルプ表示フラグ
}

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"-h": true, "--h": true, "-help": true, "--help": true,
	"-headless": true, "--headless": true,
	"-tui": true, "--tui": true,
	"-autoplay": true, "--autoplay": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("drumvis", flag.ContinueOnError)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.IntVar(&config.BPM, "bpm", 0, "初期BPM（1-300）")
	fs.IntVar(&config.BPM, "b", 0, "初期BPM（短縮形）")
	fs.Float64Var(&config.Speed, "speed", 0, "速度倍率")
	fs.Float64Var(&config.Speed, "s", 0, "速度倍率（短縮形）")
	fs.StringVar(&config.ConfigPath, "config", "", "設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "設定ファイル（短縮形）")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.TUI, "tui", false, "ターミナル表示モード")
	fs.BoolVar(&config.Autoplay, "autoplay", false, "読み込み後に再生")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if config.ConfigPath == "" {
		config.ConfigPath = os.Getenv("DRUMVIS_CONFIG")
	}

	// タイムアウトの検証
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if config.BPM != 0 && (config.BPM < clock.MinBPM || config.BPM > clock.MaxBPM) {
		return nil, fmt.Errorf("bpm must be between %d and %d, got %d", clock.MinBPM, clock.MaxBPM, config.BPM)
	}
	if config.Speed != 0 && !clock.ValidSpeed(config.Speed) {
		return nil, fmt.Errorf("invalid speed: %g (must be one of %v)", config.Speed, clock.Speeds)
	}

	if config.Headless && config.TUI {
		return nil, fmt.Errorf("--headless and --tui cannot be combined")
	}

	// 位置引数（MIDIファイルのパス）
	if fs.NArg() > 0 {
		config.MIDIPath = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// -t 5 のように値が続く場合は一緒に移動する
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if !boolFlags[arg] && !strings.Contains(arg, "=") {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `drumvis - MIDI piano-roll visualizer

Usage:
  drumvis [options] [midi-file]

Arguments:
  midi-file     起動時に読み込むMIDIファイル（.mid / .midi、省略可）

Options:
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -b, --bpm <bpm>             初期BPM（1-300、ファイルのテンポが優先）
  -s, --speed <multiplier>    速度倍率: 0.5, 0.75, 1, 1.25, 1.5, 2
  -c, --config <path>         表示設定YAML（デフォルト: drumvis.yaml を自動検出）
  --autoplay                  読み込み後すぐに再生
  --headless                  ヘッドレスモード（GUIなし）
  --tui                       ターミナルで表示
  -h, --help                  このヘルプを表示

Keys:
  Space       再生/一時停止
  S           停止
  Up/Down     BPM ±1（Shiftで ±10）
  1-6         速度 0.5x, 0.75x, 1x, 1.25x, 1.5x, 2x
  F           拍の単位を切り替え（1/4, 1/8, 1/16）
  C           MIDIデータをクリア
  Esc, Q      終了

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  DRUMVIS_CONFIG=<path>       設定ファイル

Examples:
  drumvis groove.mid                      ウィンドウで表示
  drumvis --autoplay --tui groove.mid     ターミナルで再生
  drumvis --headless -t 10 groove.mid     10秒間ヘッドレスで再生
  drumvis -l debug groove.mid             デバッグログを有効化
`)
}
