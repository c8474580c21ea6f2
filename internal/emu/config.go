package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace    bool // log CPU instructions
	LimitFPS bool // frame-pacing setting for the host; Machine does not read it
	// Later: fast-forward, GBC enable, debugger flags, etc.
}
