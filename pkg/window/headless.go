package window

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/config"
	"github.com/zurustar/drumvis/pkg/control"
	"github.com/zurustar/drumvis/pkg/editor"
	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/render"
)

const (
	// フレーム統計をログに出す間隔
	statsInterval = time.Second
	// 入力終了後に再生終了を確認する間隔
	idlePollInterval = 50 * time.Millisecond
)

// RunHeadless ヘッドレスモードでセッションを実行する
// 描画はRecorderに記録され、readerから1行ずつコマンドを受け付ける。
// 終了条件: タイムアウト、quitコマンド、またはタイムアウト未指定で
// 入力が閉じられ再生が止まっているとき
func RunHeadless(session *editor.Session, cfg config.WindowConfig, timeout time.Duration, reader io.Reader, writer io.Writer) error {
	log := logger.GetLogger()
	rec := render.NewRecorder(float64(cfg.Width), float64(cfg.Height), render.WithRecordHistory(false))

	var (
		frames  int
		lastOps int
		lastLog time.Time
	)
	ticker := clock.NewTicker(cfg.TickRate, func(now time.Time) {
		session.Tick(now)
		session.Draw(rec)
		frames++

		if lastLog.IsZero() {
			lastLog = now
			return
		}
		if now.Sub(lastLog) >= statsInterval {
			ops := rec.GetOperationCount()
			snap := session.Snapshot()
			log.Info("Frame stats",
				"frames", frames,
				"ops_per_frame", (ops-lastOps)/max(frames, 1),
				"time", fmt.Sprintf("%.2f", snap.Time),
				"state", snap.State.String(),
				"bpm", snap.BPM)
			frames = 0
			lastOps = ops
			lastLog = now
		}
	})
	ticker.Start()
	defer ticker.Stop()

	// タイムアウト処理用のコンテキスト
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	lines := make(chan string)
	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Warn("failed to read input", "error", err)
		}
	}()

	fmt.Fprintln(writer, "drumvis headless. Commands: play, pause, toggle, stop, bpm <n>, speed <x>, figure <1/4|1/8|1/16>, load <path>, clear, status, quit")

	idle := time.NewTicker(idlePollInterval)
	defer idle.Stop()
	inputClosed := false

	for {
		select {
		case <-ctx.Done():
			if timeout > 0 {
				log.Info("Timeout reached, terminating", "duration", timeout)
			}
			return nil

		case <-inputDone:
			inputClosed = true
			inputDone = nil

		case line := <-lines:
			if quit := handleLine(session, strings.TrimSpace(line), writer); quit {
				return nil
			}

		case <-idle.C:
			if inputClosed && timeout == 0 && session.Snapshot().State != clock.Playing && !session.Loading() {
				log.Info("Input closed and playback finished, terminating")
				return nil
			}
		}
	}
}

// handleLine は1行分のコマンドを処理する。終了要求ならtrueを返す
func handleLine(session *editor.Session, line string, writer io.Writer) bool {
	switch strings.ToLower(line) {
	case "":
		return false
	case "q", "quit", "exit":
		return true
	case "status":
		fmt.Fprintln(writer, session.Status())
		return false
	}

	cmd, err := control.ParseLine(line)
	if err != nil {
		fmt.Fprintf(writer, "Error: %v\n", err)
		return false
	}
	if err := session.Handle(cmd); err != nil {
		fmt.Fprintf(writer, "Error: %s\n", session.Message())
		return false
	}
	switch cmd.(type) {
	case control.LoadRequested, control.ClearRequested:
		fmt.Fprintln(writer, session.Message())
	}
	fmt.Fprintln(writer, session.Status())
	return false
}
