package render

import (
	"bytes"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/view"
)

func TestRecorder_History(t *testing.T) {
	rec := NewRecorder(640, 480)
	if w, h := rec.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %v×%v", w, h)
	}

	rec.FillRect(view.Rect{W: 10, H: 10}, color.White)
	rec.Line(0, 0, 10, 10, 1, color.Black)
	rec.Text("hello", 1, 2, AlignLeft, color.White)

	history := rec.GetOperationHistory()
	if len(history) != 3 {
		t.Fatalf("history has %d records, want 3", len(history))
	}
	if history[1].Operation != "Line" || history[1].Args["x2"] != 10.0 {
		t.Errorf("unexpected record: %+v", history[1])
	}
	if got := rec.Operations("Text"); len(got) != 1 || got[0].Args["text"] != "hello" {
		t.Errorf("Operations(Text) = %+v", got)
	}

	// 返されたスライスを変更しても内部状態は変わらない
	history[0].Operation = "changed"
	if rec.GetOperationHistory()[0].Operation != "FillRect" {
		t.Error("GetOperationHistory should return a copy")
	}

	rec.ClearOperationHistory()
	if rec.GetOperationCount() != 0 || len(rec.GetOperationHistory()) != 0 {
		t.Error("ClearOperationHistory should reset history and count")
	}
}

func TestRecorder_CountWithoutHistory(t *testing.T) {
	rec := NewRecorder(100, 100, WithRecordHistory(false), WithLogOperations(true))
	rec.FillRoundedRect(view.Rect{W: 1, H: 1}, 2, color.White)
	rec.StrokeRoundedRect(view.Rect{W: 1, H: 1}, 2, 1, color.White)
	rec.StrokeRect(view.Rect{W: 1, H: 1}, 1, color.White)

	if rec.GetOperationCount() != 3 {
		t.Errorf("GetOperationCount() = %d, want 3", rec.GetOperationCount())
	}
	if len(rec.GetOperationHistory()) != 0 {
		t.Error("history should be empty when recording is disabled")
	}
}

func TestRecorder_LogsThroughPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.InitLoggerWithWriter("debug", &buf); err != nil {
		t.Fatal(err)
	}
	defer logger.InitLoggerWithWriter("info", io.Discard)

	rec := NewRecorder(100, 100, WithLogOperations(true), WithRecorderLogger(nil))
	rec.FillRect(view.Rect{W: 10, H: 10}, color.White)

	if !strings.Contains(buf.String(), "[Headless] FillRect") {
		t.Errorf("operation not logged to the package logger: %q", buf.String())
	}
}
