package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zurustar/drumvis/pkg/cli"
	"github.com/zurustar/drumvis/pkg/config"
	"github.com/zurustar/drumvis/pkg/control"
	"github.com/zurustar/drumvis/pkg/editor"
	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/plugin"
	"github.com/zurustar/drumvis/pkg/termui"
	"github.com/zurustar/drumvis/pkg/window"
)

// TUIログの出力先（ターミナルを描画に使うため）
const tuiLogName = "drumvis.log"

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config   *cli.Config
	settings *config.Config
	log      *slog.Logger
	logFile  *os.File
	session  *editor.Session

	// ヘッドレスモードのコマンド入出力
	stdin  io.Reader
	stdout io.Writer
}

// New Applicationを作成
func New() *Application {
	return &Application{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer app.closeLog()

	app.log.Info("Application started")

	// 3. 表示設定の読み込み
	if err := app.loadSettings(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 4. セッションの作成と初期ファイルの読み込み
	app.session = app.newSession()
	defer app.session.Close()

	if app.config.MIDIPath != "" {
		if err := app.session.Load(app.config.MIDIPath); err != nil {
			return fmt.Errorf("failed to load MIDI file: %w", err)
		}
	}
	if app.config.Autoplay {
		if err := app.session.Handle(control.Transport{Action: control.Play}); err != nil {
			return fmt.Errorf("failed to start playback: %w", err)
		}
	}

	// 5. ホストの実行
	if err := app.runHost(); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
// TUIモードではターミナルを汚さないよう一時ディレクトリのファイルに出力する
func (app *Application) initLogger() error {
	if !app.config.TUI {
		if err := logger.InitLogger(app.config.LogLevel); err != nil {
			return err
		}
		app.log = logger.GetLogger()
		return nil
	}

	f, err := os.OpenFile(filepath.Join(os.TempDir(), tuiLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if err := logger.InitLoggerWithWriter(app.config.LogLevel, f); err != nil {
		f.Close()
		return err
	}
	app.logFile = f
	app.log = logger.GetLogger()
	return nil
}

func (app *Application) closeLog() {
	if app.logFile != nil {
		app.logFile.Close()
		app.logFile = nil
	}
}

// loadSettings 設定ファイルを読み込む（未指定なら自動検出、見つからなければデフォルト）
func (app *Application) loadSettings() error {
	path := app.config.ConfigPath
	if path == "" {
		dirs := []string{"."}
		if app.config.MIDIPath != "" {
			dirs = append(dirs, filepath.Dir(app.config.MIDIPath))
		}
		if found, ok := config.Locate(dirs...); ok {
			path = found
		}
	}

	if path == "" {
		app.settings = config.Default()
		app.log.Debug("Using default settings")
		return nil
	}

	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	app.settings = settings
	app.log.Info("Settings loaded", "path", path)
	return nil
}

// newSession セッションを作成する
// コマンドライン指定のBPM・速度は設定ファイルより優先
func (app *Application) newSession() *editor.Session {
	pb := app.settings.Playback
	bpm, speed := pb.BPM, pb.Speed
	if app.config.BPM != 0 {
		bpm = app.config.BPM
	}
	if app.config.Speed != 0 {
		speed = app.config.Speed
	}

	opts := []editor.Option{
		editor.WithLogger(app.log),
		editor.WithStyle(app.settings.Render.Style()),
		editor.WithPlayback(bpm, speed, pb.FigureValue()),
	}
	// 対話ホストでは読み込みをバックグラウンドで行う
	if !app.config.Headless {
		opts = append(opts, editor.WithAsyncLoads())
	}
	return editor.New(plugin.NewProcessor(app.log), opts...)
}

// runHost モードに応じたホストを実行する
func (app *Application) runHost() error {
	switch {
	case app.config.Headless:
		app.log.Info("Starting headless mode", "timeout", app.config.Timeout)
		return window.RunHeadless(app.session, app.settings.Window, app.config.Timeout, app.stdin, app.stdout)
	case app.config.TUI:
		app.log.Info("Starting terminal UI")
		return termui.Run(app.session, app.settings.Window, app.config.Timeout)
	default:
		app.log.Info("Starting window", "width", app.settings.Window.Width, "height", app.settings.Window.Height)
		return window.Run(app.session, app.settings.Window, app.config.Timeout)
	}
}
