package window

import (
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zurustar/drumvis/pkg/config"
	"github.com/zurustar/drumvis/pkg/editor"
	"github.com/zurustar/drumvis/pkg/fileutil"
	"github.com/zurustar/drumvis/pkg/logger"
	"github.com/zurustar/drumvis/pkg/render"
	"github.com/zurustar/drumvis/pkg/view"
)

// ステータスバーの高さ
const statusBarHeight = 20

var (
	// ステータスバー背景色
	statusBarColor = color.RGBA{0x20, 0x20, 0x20, 0xFF}
	// テキスト色（白）
	textColor = color.White
	// メッセージの色（黄色）
	messageColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
)

// keyBindings はEbitengineのキーと操作の対応
var keyBindings = []struct {
	key     ebiten.Key
	binding editor.Key
}{
	{ebiten.KeySpace, editor.KeyPlayPause},
	{ebiten.KeyS, editor.KeyStop},
	{ebiten.KeyUp, editor.KeyBPMUp},
	{ebiten.KeyDown, editor.KeyBPMDown},
	{ebiten.Key1, editor.KeySpeed1},
	{ebiten.Key2, editor.KeySpeed2},
	{ebiten.Key3, editor.KeySpeed3},
	{ebiten.Key4, editor.KeySpeed4},
	{ebiten.Key5, editor.KeySpeed5},
	{ebiten.Key6, editor.KeySpeed6},
	{ebiten.KeyF, editor.KeyFigure},
	{ebiten.KeyC, editor.KeyClear},
	{ebiten.KeyEscape, editor.KeyQuit},
	{ebiten.KeyQ, editor.KeyQuit},
}

// bindingFor はEbitengineのキーに対応する操作を返す
func bindingFor(k ebiten.Key) editor.Key {
	for _, b := range keyBindings {
		if b.key == k {
			return b.binding
		}
	}
	return editor.KeyNone
}

// keyPress は1フレーム分のキー入力
type keyPress struct {
	key   editor.Key
	shift bool
}

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	session   *editor.Session
	timeout   time.Duration // タイムアウト時間
	startTime time.Time     // 開始時刻
	log       *slog.Logger

	// テスト用に差し替え可能な入力と時刻
	pollKeys func() []keyPress
	now      func() time.Time
}

// NewGame Gameを作成
func NewGame(session *editor.Session, timeout time.Duration) *Game {
	return &Game{
		session:   session,
		timeout:   timeout,
		startTime: time.Now(),
		log:       logger.GetLogger(),
		pollKeys:  pollKeys,
		now:       time.Now,
	}
}

// pollKeys は今フレームで押されたキーを集める
func pollKeys() []keyPress {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	var presses []keyPress
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			presses = append(presses, keyPress{key: b.binding, shift: shift})
		}
	}
	return presses
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	g.loadDropped()
	return g.update(g.pollKeys(), g.now())
}

func (g *Game) update(presses []keyPress, now time.Time) error {
	// タイムアウトチェック
	if g.timeout > 0 && now.Sub(g.startTime) >= g.timeout {
		g.log.Info("Timeout reached, terminating")
		return ebiten.Termination
	}

	for _, p := range presses {
		if p.key == editor.KeyQuit {
			return ebiten.Termination
		}
		// 不正な入力はメッセージとして表示されるだけで終了はしない
		if err := g.session.Press(p.key, p.shift); err != nil {
			g.log.Debug("key rejected", "key", int(p.key), "error", err)
		}
	}

	g.session.Tick(now)
	return nil
}

// loadDropped はドロップされたMIDIファイルを読み込む
func (g *Game) loadDropped() {
	dropped := ebiten.DroppedFiles()
	if dropped == nil {
		return
	}
	entries, err := fs.ReadDir(dropped, ".")
	if err != nil {
		g.log.Warn("failed to read dropped files", "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !fileutil.IsMIDIPath(e.Name()) {
			continue
		}
		f, err := dropped.Open(e.Name())
		if err != nil {
			g.log.Warn("failed to open dropped file", "name", e.Name(), "error", err)
			continue
		}
		if err := g.session.LoadFrom(e.Name(), f); err != nil {
			g.log.Warn("failed to load dropped file", "name", e.Name(), "error", err)
		}
		f.Close()
		// 最初の1つだけ読み込む
		return
	}
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	g.draw(NewSurface(screen))
}

func (g *Game) draw(s render.Surface) {
	w, h := s.Size()
	area, bar := splitStatusBar(view.Rect{W: w, H: h})

	g.session.DrawIn(s, area)

	s.FillRect(bar, statusBarColor)
	s.Text(g.session.Status(), bar.X+4, bar.Y+3, render.AlignLeft, textColor)
	if msg := g.session.Message(); msg != "" {
		s.Text(msg, bar.X+bar.W/2+4, bar.Y+3, render.AlignLeft, messageColor)
	}
}

// splitStatusBar は画面を描画領域と下端のステータスバーに分ける
func splitStatusBar(screen view.Rect) (area, bar view.Rect) {
	barH := min(float64(statusBarHeight), screen.H)
	return screen.SplitTop(screen.H - barH)
}

// Layout 画面サイズを返す（ウィンドウサイズに追従）
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run GUIモードでウィンドウを実行
func Run(session *editor.Session, cfg config.WindowConfig, timeout time.Duration) error {
	game := NewGame(session, timeout)

	// ウィンドウ設定
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TickRate > 0 {
		ebiten.SetTPS(cfg.TickRate)
	}

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	return nil
}
