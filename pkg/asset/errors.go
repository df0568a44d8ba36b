package asset

import "errors"

// ロード時のエラー定義
var (
	// ErrNotFound ファイルが存在しない（またはディレクトリ）
	ErrNotFound = errors.New("MIDI file not found")

	// ErrUnsupportedFormat 拡張子が .mid / .midi ではない
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnreadable ファイルを開けない、または読み込めない
	ErrUnreadable = errors.New("MIDI file unreadable")

	// ErrCorrupt Standard MIDI File として解析できない
	ErrCorrupt = errors.New("corrupt MIDI file")
)
