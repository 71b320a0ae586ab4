package dto

// ScriptMetadata represents the frontmatter of a kiosk script document.
// It uses "mapstructure" tags to match the YAML keys Loam decodes.
// The document body (below the frontmatter) becomes the intro text.
type ScriptMetadata struct {
	Title   string   `json:"title" mapstructure:"title"`
	Prompts []string `json:"prompts" mapstructure:"prompts"`

	// Pacing holds human-readable durations ("40ms", "0s"). Parsing happens
	// in the adapter so a bad value surfaces as a load error, not a zero.
	Pacing *PacingMetadata `json:"pacing,omitempty" mapstructure:"pacing"`

	// Launch binds the finished interview to a named launcher.
	Launch *LaunchMetadata `json:"launch,omitempty" mapstructure:"launch"`
}

// PacingMetadata shapes the auto-typing feel. Empty fields fall back to the
// engine defaults; an explicit "0s" means instant.
type PacingMetadata struct {
	CharInterval string `json:"char_interval" mapstructure:"char_interval"`
	SettleDelay  string `json:"settle_delay" mapstructure:"settle_delay"`
}

// LaunchMetadata names the launcher and the static environment forwarded to
// it alongside the captured answers.
type LaunchMetadata struct {
	Launcher string            `json:"launcher" mapstructure:"launcher"`
	Env      map[string]string `json:"env,omitempty" mapstructure:"env"`
}
