package ui

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir string `env:"HOME"`

	// SettingsPath is the config file watched for live settings edits.
	SettingsPath string

	// MaxWidth caps the rendered frame, 0 for the terminal width.
	MaxWidth uint

	// ShowCaptions mirrors narration as on-screen text.
	ShowCaptions bool `env:"WHISPERWOOD_CAPTIONS" envDefault:"true"`

	// ShowDebugBar adds engine internals to the status line.
	ShowDebugBar bool `env:"WHISPERWOOD_DEBUG_BAR" envDefault:"false"`
}
