package frontend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// Config holds the front end's host-side settings: window scale, audio
// output, and the player-1 key mapping. Core emulation has no
// configuration; everything here is presentation.
type Config struct {
	Window WindowConfig `json:"window"`
	Audio  AudioConfig  `json:"audio"`
	Input  InputConfig  `json:"input"`
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Scale int `json:"scale"`
}

// AudioConfig contains audio output configuration.
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sample_rate"`
}

// InputConfig contains the keyboard mapping for player 1.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
}

// KeyMapping names the keyboard keys bound to each controller button.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// DefaultConfig returns the out-of-the-box settings: 3x window, audio
// at 44.1kHz, arrows + Z/X + Enter/Shift.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Scale: 3},
		Audio:  AudioConfig{Enabled: true, SampleRate: 44100},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up: "up", Down: "down", Left: "left", Right: "right",
				A: "x", B: "z", Start: "enter", Select: "shift",
			},
		},
	}
}

// LoadConfig reads a JSON config file, layering it over the defaults so
// a partial file only overrides what it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Window.Scale < 1 {
		cfg.Window.Scale = 1
	}
	if cfg.Audio.SampleRate <= 0 {
		return cfg, fmt.Errorf("config %s: sample_rate must be positive", path)
	}
	return cfg, nil
}

// keyByName maps the config file's key names to ebiten keys. Unknown
// names fall back to the default binding for that button.
var keyByName = map[string]ebiten.Key{
	"up": ebiten.KeyUp, "down": ebiten.KeyDown,
	"left": ebiten.KeyLeft, "right": ebiten.KeyRight,
	"enter": ebiten.KeyEnter, "shift": ebiten.KeyShift,
	"space": ebiten.KeySpace, "tab": ebiten.KeyTab,
	"a": ebiten.KeyA, "b": ebiten.KeyB, "c": ebiten.KeyC, "d": ebiten.KeyD,
	"e": ebiten.KeyE, "f": ebiten.KeyF, "g": ebiten.KeyG, "h": ebiten.KeyH,
	"i": ebiten.KeyI, "j": ebiten.KeyJ, "k": ebiten.KeyK, "l": ebiten.KeyL,
	"m": ebiten.KeyM, "n": ebiten.KeyN, "o": ebiten.KeyO, "p": ebiten.KeyP,
	"q": ebiten.KeyQ, "r": ebiten.KeyR, "s": ebiten.KeyS, "t": ebiten.KeyT,
	"u": ebiten.KeyU, "v": ebiten.KeyV, "w": ebiten.KeyW, "x": ebiten.KeyX,
	"y": ebiten.KeyY, "z": ebiten.KeyZ,
}

// buttonKeys is a KeyMapping resolved to concrete ebiten keys.
type buttonKeys struct {
	up, down, left, right ebiten.Key
	a, b, start, sel      ebiten.Key
}

func (m KeyMapping) resolve() buttonKeys {
	def := DefaultConfig().Input.Player1Keys
	lookup := func(name, fallback string) ebiten.Key {
		if k, ok := keyByName[name]; ok {
			return k
		}
		return keyByName[fallback]
	}
	return buttonKeys{
		up:    lookup(m.Up, def.Up),
		down:  lookup(m.Down, def.Down),
		left:  lookup(m.Left, def.Left),
		right: lookup(m.Right, def.Right),
		a:     lookup(m.A, def.A),
		b:     lookup(m.B, def.B),
		start: lookup(m.Start, def.Start),
		sel:   lookup(m.Select, def.Select),
	}
}
