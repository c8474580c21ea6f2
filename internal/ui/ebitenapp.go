// Package ui implements the ebiten-based reference host: a window, key
// polling mapped to the joypad, framebuffer presentation, and small
// JSON-persisted settings (window title, scale, ROM directory). It is a
// convenience around internal/emu, not part of the emulator core.
package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmgcore/gbemu/internal/emu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// App is the ebiten Game implementation wrapping a Machine.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	paused bool

	toastMsg   string
	toastUntil time.Time
}

// NewApp loads persisted settings (merged with cfg overrides), sets up
// the window, and returns an App ready for Run.
func NewApp(cfg Config, m *emu.Machine) *App {
	cfg = loadSettings(cfg)
	cfg.Defaults()
	ebiten.SetWindowTitle(windowTitle(cfg, m))
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{cfg: cfg, m: m}
}

func windowTitle(cfg Config, m *emu.Machine) string {
	if m == nil || m.ROMPath() == "" {
		return cfg.Title
	}
	if t := m.ROMTitle(); t != "" {
		return cfg.Title + " - [" + t + "]"
	}
	return cfg.Title
}

// Run starts the ebiten game loop.
func (a *App) Run() error { return ebiten.RunGame(a) }

// SaveSettings persists the current window/ROM-dir settings to disk.
func (a *App) SaveSettings() { a.saveSettings() }

// Update polls keyboard input, advances the machine by one frame, and
// handles the small set of host-level hotkeys (pause, reset, fullscreen).
func (a *App) Update() error {
	var btn emu.Buttons
	if !a.paused {
		if ebiten.IsKeyPressed(ebiten.KeyRight) {
			btn.Right = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyLeft) {
			btn.Left = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyUp) {
			btn.Up = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyDown) {
			btn.Down = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyZ) {
			btn.A = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyX) {
			btn.B = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyEnter) {
			btn.Start = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			btn.Select = true
		}
	}
	a.m.SetButtons(btn)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.m.ResetPostBoot()
		a.toast("Reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		a.m.ResetWithBoot()
		a.toast("Reset (boot ROM)")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	// N single-steps one frame while paused, since Update itself skips
	// StepFrame below when paused.
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.m.StepFrame()
		return nil
	}
	if !a.paused {
		a.m.StepFrame()
	}
	return nil
}

// Draw blits the machine's framebuffer to the screen.
func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	a.tex.WritePixels(a.m.Framebuffer())
	screen.DrawImage(a.tex, nil)

	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 4, 4)
	}
}

// Layout fixes the internal render resolution to the DMG screen size;
// ebiten handles upscaling to the window size via Scale.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) { return 160, 144 }

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func settingsPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		d := filepath.Join(dir, "gbemu")
		_ = os.MkdirAll(d, 0755)
		return filepath.Join(d, "settings.json")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "gbemu_settings.json")
}

// loadSettings reads persisted settings and overlays any explicitly-set
// fields from override (e.g. CLI flags), matching the teacher's
// override-over-persisted merge strategy.
func loadSettings(override Config) Config {
	var cfg Config
	if b, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(b, &cfg)
	}
	if override.Title != "" {
		cfg.Title = override.Title
	}
	if override.Scale != 0 {
		cfg.Scale = override.Scale
	}
	if override.ROMsDir != "" {
		cfg.ROMsDir = override.ROMsDir
	}
	if cfg.Title == "" {
		cfg.Title = "gbemu"
	}
	return cfg
}

func (a *App) saveSettings() {
	if a == nil {
		return
	}
	b, err := json.MarshalIndent(a.cfg, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(settingsPath(), b, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ui: write settings: %v\n", err)
	}
}
