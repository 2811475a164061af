package config

import (
	"github.com/texforge/texforge/internal/levels"
)

// DefaultProfile always exists and can never be deleted.
const DefaultProfile = "Default"

// Settings holds every value persisted in the General section of the
// settings file. One instance lives in memory per process; mutations are
// written through to disk immediately by the Store.
type Settings struct {
	// TexConvPath is the absolute path to the texconv executable. All
	// conversions fail fast when it does not point at an existing file.
	TexConvPath string

	// ExportDDS gates whether conversion runs at all after an export.
	ExportDDS bool

	// OverwriteDDS replaces existing .dds outputs instead of skipping them.
	OverwriteDDS bool

	// AdjustRed enables the specular levels remap for *_s.png / *_s.tga.
	AdjustRed bool

	// Red and Green are the levels triples applied to specular maps. Blue is
	// always identity.
	Red   levels.Channel
	Green levels.Channel

	// OutputDir overrides output placement. Empty means a DDS subfolder
	// alongside each source file.
	OutputDir string

	// ActiveProfile names the profile whose suffix map drives resolution.
	ActiveProfile string

	// Panel visibility flags. Persisted for the embedding UI; the core only
	// stores them.
	ShowSuffixes bool
	ShowLevels   bool
	ShowLog      bool
	ShowWiki     bool
}

// defaultSettings is the single canonical defaults table. Missing keys in
// older settings files fall back to these values individually, so a file
// written by any earlier schema version loads without error.
func defaultSettings() *Settings {
	return &Settings{
		TexConvPath:   "",
		ExportDDS:     false,
		OverwriteDDS:  false,
		AdjustRed:     false,
		Red:           levels.Channel{Black: 0, Gamma: 1.0, White: 255},
		Green:         levels.Channel{Black: 0, Gamma: 1.0, White: 255},
		OutputDir:     "",
		ActiveProfile: DefaultProfile,
		ShowSuffixes:  true,
		ShowLevels:    true,
		ShowLog:       true,
		ShowWiki:      false,
	}
}

// Clamp normalizes the levels triples so black stays strictly below white
// and gamma stays inside its supported range. Called after every load and
// after every mutation of the numeric fields.
func (s *Settings) Clamp() {
	s.Red.Clamp()
	s.Green.Clamp()
}

// Clone returns an independent copy for batch snapshots.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}
