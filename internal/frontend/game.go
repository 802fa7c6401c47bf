// Package frontend provides the ebiten-backed video sink, audio sink
// and keyboard input source used by cmd/nescore. Nothing in the core
// emulation packages imports this package; it only depends on them.
package frontend

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rng999/nescore/internal/console"
	"github.com/rng999/nescore/internal/input"
	"github.com/rng999/nescore/internal/ppu"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

// Game implements ebiten.Game, driving one Console one frame at a time
// and forwarding keyboard state to its first controller. It is also the
// console's VideoSink: completed frames are converted to RGBA bytes as
// they are blitted.
type Game struct {
	console *console.Console
	audio   console.AudioSink
	image   *ebiten.Image
	pixels  []byte
	scale   int
	keys    buttonKeys
}

// NewGame wraps console for display per cfg. audio may be nil for
// audio-disabled runs.
func NewGame(c *console.Console, audio console.AudioSink, cfg Config) *Game {
	scale := cfg.Window.Scale
	if scale < 1 {
		scale = 1
	}
	return &Game{
		console: c,
		audio:   audio,
		image:   ebiten.NewImage(screenWidth, screenHeight),
		pixels:  make([]byte, screenWidth*screenHeight*4),
		scale:   scale,
		keys:    cfg.Input.Player1Keys.resolve(),
	}
}

// Update advances emulation by exactly one frame and samples the
// keyboard for controller 1.
func (g *Game) Update() error {
	if quitRequested() {
		return ebiten.Termination
	}
	g.console.UpdateController(0, g.pollKeyboard())
	g.console.StepFrame(g.audio, g)
	return nil
}

// BlitPixels implements console.VideoSink, converting the frame's
// ARGB8888 pixels to ebiten's RGBA byte layout.
func (g *Game) BlitPixels(frame *ppu.Frame) {
	for i, argb := range frame {
		o := i * 4
		g.pixels[o+0] = byte(argb >> 16)
		g.pixels[o+1] = byte(argb >> 8)
		g.pixels[o+2] = byte(argb)
		g.pixels[o+3] = byte(argb >> 24)
	}
}

// Draw puts the last completed frame on screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.image.WritePixels(g.pixels)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.image, op)
}

// Layout reports the window size implied by the configured scale.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth * g.scale, screenHeight * g.scale
}

// pollKeyboard samples the configured key mapping into a controller
// snapshot.
func (g *Game) pollKeyboard() input.Buttons {
	return input.Buttons{
		A:      ebiten.IsKeyPressed(g.keys.a),
		B:      ebiten.IsKeyPressed(g.keys.b),
		Select: ebiten.IsKeyPressed(g.keys.sel),
		Start:  ebiten.IsKeyPressed(g.keys.start),
		Up:     ebiten.IsKeyPressed(g.keys.up),
		Down:   ebiten.IsKeyPressed(g.keys.down),
		Left:   ebiten.IsKeyPressed(g.keys.left),
		Right:  ebiten.IsKeyPressed(g.keys.right),
	}
}

// quitRequested reports whether the player pressed Escape since the
// last poll, ebiten's window-close signal for this emulator.
func quitRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

func (g *Game) String() string {
	return fmt.Sprintf("nescore frontend (scale %dx)", g.scale)
}
