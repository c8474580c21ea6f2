package ui

// Config contains window/input related settings persisted across runs.
type Config struct {
	Title   string // window title
	Scale   int    // integer upscaling factor
	ROMsDir string // directory to browse for ROMs
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
}
