package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/view"
)

// OperationRecord は描画操作の記録を表す
type OperationRecord struct {
	Operation string
	Args      map[string]any
}

// Recorder は実際には描画せず、描画操作を記録するSurface
// ヘッドレスモードとテストで使用する
type Recorder struct {
	width, height float64

	log              *slog.Logger
	logOperations    bool // 描画操作をログに記録するかどうか
	recordHistory    bool // 操作履歴を保持するかどうか
	operationHistory []OperationRecord
	operationCount   int
	historyMu        sync.RWMutex
}

// RecorderOption は Recorder のオプションを設定する関数型
type RecorderOption func(*Recorder)

// WithRecorderLogger はロガーを設定する
func WithRecorderLogger(log *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.log = log
	}
}

// WithLogOperations は描画操作のログ記録を有効/無効にする
func WithLogOperations(enabled bool) RecorderOption {
	return func(r *Recorder) {
		r.logOperations = enabled
	}
}

// WithRecordHistory は操作履歴の記録を有効/無効にする
func WithRecordHistory(enabled bool) RecorderOption {
	return func(r *Recorder) {
		r.recordHistory = enabled
	}
}

// NewRecorder は指定サイズの Recorder を作成する
func NewRecorder(width, height float64, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		width:         width,
		height:        height,
		recordHistory: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.GetLogger()
	}
	return r
}

func (r *Recorder) record(operation string, args ...any) {
	if r.logOperations {
		r.log.Debug(fmt.Sprintf("[Headless] %s", operation), args...)
	}

	r.historyMu.Lock()
	defer r.historyMu.Unlock()
	r.operationCount++
	if !r.recordHistory {
		return
	}
	rec := OperationRecord{Operation: operation, Args: make(map[string]any, len(args)/2)}
	// argsをkey-valueペアとして解析
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			rec.Args[key] = args[i+1]
		}
	}
	r.operationHistory = append(r.operationHistory, rec)
}

// Size はSurfaceのサイズを返す
func (r *Recorder) Size() (float64, float64) {
	return r.width, r.height
}

// Resize はSurfaceのサイズを変更する
func (r *Recorder) Resize(width, height float64) {
	r.width, r.height = width, height
}

// FillRect は矩形の塗りつぶしを記録する
func (r *Recorder) FillRect(rect view.Rect, c color.Color) {
	r.record("FillRect", "rect", rect, "color", c)
}

// StrokeRect は矩形の枠線を記録する
func (r *Recorder) StrokeRect(rect view.Rect, width float64, c color.Color) {
	r.record("StrokeRect", "rect", rect, "width", width, "color", c)
}

// FillRoundedRect は角丸矩形の塗りつぶしを記録する
func (r *Recorder) FillRoundedRect(rect view.Rect, radius float64, c color.Color) {
	r.record("FillRoundedRect", "rect", rect, "radius", radius, "color", c)
}

// StrokeRoundedRect は角丸矩形の枠線を記録する
func (r *Recorder) StrokeRoundedRect(rect view.Rect, radius, width float64, c color.Color) {
	r.record("StrokeRoundedRect", "rect", rect, "radius", radius, "width", width, "color", c)
}

// Line は線分を記録する
func (r *Recorder) Line(x1, y1, x2, y2, width float64, c color.Color) {
	r.record("Line", "x1", x1, "y1", y1, "x2", x2, "y2", y2, "width", width, "color", c)
}

// Text は文字列描画を記録する
func (r *Recorder) Text(s string, x, y float64, align Align, c color.Color) {
	r.record("Text", "text", s, "x", x, "y", y, "align", align, "color", c)
}

// GetOperationHistory は操作履歴のコピーを返す
func (r *Recorder) GetOperationHistory() []OperationRecord {
	r.historyMu.RLock()
	defer r.historyMu.RUnlock()
	result := make([]OperationRecord, len(r.operationHistory))
	copy(result, r.operationHistory)
	return result
}

// Operations は指定した種類の操作のみを返す
func (r *Recorder) Operations(operation string) []OperationRecord {
	r.historyMu.RLock()
	defer r.historyMu.RUnlock()
	var result []OperationRecord
	for _, rec := range r.operationHistory {
		if rec.Operation == operation {
			result = append(result, rec)
		}
	}
	return result
}

// ClearOperationHistory は操作履歴と件数をクリアする
func (r *Recorder) ClearOperationHistory() {
	r.historyMu.Lock()
	defer r.historyMu.Unlock()
	r.operationHistory = nil
	r.operationCount = 0
}

// GetOperationCount は記録した操作の件数を返す（履歴を保持しない場合も数える）
func (r *Recorder) GetOperationCount() int {
	r.historyMu.RLock()
	defer r.historyMu.RUnlock()
	return r.operationCount
}
