package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/texforge/texforge/internal/formats"
)

const (
	generalSection = "General"
	sectionSuffix  = "_SuffixFormats"
)

// Store persists Settings and profile suffix maps to a single INI file.
//
// Every mutation rewrites the whole file (read, mutate in memory, write
// back). That rules out torn sections at the cost of not tolerating
// concurrent external edits, which is fine for a single-user tool. Key case
// is preserved on write; suffix keys are case-sensitive in storage.
type Store struct {
	path   string
	logger *slog.Logger
	file   *ini.File
}

// NewStore creates a store over the settings file at path. Nothing is read
// until Load is called.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

var loadOpts = ini.LoadOptions{AllowShadows: true}

// Load reads the settings file and returns the General section as Settings.
//
// A missing file synthesizes hard-coded defaults and writes them. A present
// but unparsable file is reset to defaults and reported via
// ErrConfigCorrupted; the returned Settings are still usable. Individual
// missing keys fall back to their per-key defaults, so files written by
// older schema versions load cleanly.
func (s *Store) Load() (*Settings, error) {
	f, err := ini.LoadSources(loadOpts, s.path)
	switch {
	case err == nil:
		s.file = f
		settings := s.readSettings(f.Section(generalSection))
		settings.Clamp()
		// Write back so keys added since the file was written are
		// materialized with their defaults.
		s.writeSettings(f.Section(generalSection), settings)
		if err := s.flush(); err != nil {
			return settings, err
		}
		return settings, nil

	case errors.Is(err, fs.ErrNotExist):
		s.file = ini.Empty(loadOpts)
		settings := defaultSettings()
		s.writeSettings(s.file.Section(generalSection), settings)
		s.file.Section(profileSection(DefaultProfile))
		if err := s.flush(); err != nil {
			return settings, err
		}
		return settings, nil

	default:
		s.logger.Warn("settings file unreadable, resetting to defaults",
			"path", s.path, "error", err)
		s.file = ini.Empty(loadOpts)
		settings := defaultSettings()
		s.writeSettings(s.file.Section(generalSection), settings)
		s.file.Section(profileSection(DefaultProfile))
		if ferr := s.flush(); ferr != nil {
			return settings, ferr
		}
		return settings, ErrConfigCorrupted
	}
}

// LoadProfile returns the suffix map of the named profile, creating and
// persisting an empty section if the profile does not exist yet.
//
// Duplicate suffix keys within a section are resolved first-wins; each
// collision is logged, never silently folded.
func (s *Store) LoadProfile(name string) (formats.SuffixMap, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	secName := profileSection(name)
	sec, err := s.file.GetSection(secName)
	if err != nil {
		sec = s.file.Section(secName)
		if err := s.flush(); err != nil {
			return nil, err
		}
	}

	m := make(formats.SuffixMap, len(sec.Keys()))
	for _, key := range sec.Keys() {
		vals := key.ValueWithShadows()
		if len(vals) > 1 {
			s.logger.Warn("duplicate suffix in profile, keeping first occurrence",
				"profile", name, "suffix", key.Name(), "kept", vals[0])
		}
		value := vals[0]
		if !formats.Valid(value) {
			s.logger.Warn("unknown format in profile, entry ignored",
				"profile", name, "suffix", key.Name(), "format", value)
			continue
		}
		m[key.Name()] = formats.Format(value)
	}
	return m, nil
}

// Save writes the General section and completely replaces the named
// profile's section. Clear-then-rewrite guarantees no stale suffix entries
// survive a deletion.
func (s *Store) Save(settings *Settings, profile string, m formats.SuffixMap) error {
	if err := s.ensure(); err != nil {
		return err
	}

	settings.Clamp()
	s.writeSettings(s.file.Section(generalSection), settings)

	secName := profileSection(profile)
	s.file.DeleteSection(secName)
	sec := s.file.Section(secName)
	for _, suffix := range sortedSuffixes(m) {
		sec.Key(suffix).SetValue(m[suffix].String())
	}
	return s.flush()
}

// SaveSettings persists the General section only, leaving profiles alone.
func (s *Store) SaveSettings(settings *Settings) error {
	if err := s.ensure(); err != nil {
		return err
	}
	settings.Clamp()
	s.writeSettings(s.file.Section(generalSection), settings)
	return s.flush()
}

// ListProfiles enumerates all profile-bearing sections, creating the Default
// profile if none exist.
func (s *Store) ListProfiles() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	var names []string
	for _, sec := range s.file.Sections() {
		if strings.HasSuffix(sec.Name(), sectionSuffix) {
			names = append(names, strings.TrimSuffix(sec.Name(), sectionSuffix))
		}
	}
	if len(names) == 0 {
		s.file.Section(profileSection(DefaultProfile))
		if err := s.flush(); err != nil {
			return nil, err
		}
		return []string{DefaultProfile}, nil
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProfile removes a profile's section and persists. The Default
// profile and the currently active profile are protected.
func (s *Store) DeleteProfile(name string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if name == DefaultProfile {
		return fmt.Errorf("%q: %w", name, ErrProtectedProfile)
	}
	general := s.file.Section(generalSection)
	if name == keyString(general, "ActiveProfile", DefaultProfile) {
		return fmt.Errorf("%q is active: %w", name, ErrProtectedProfile)
	}
	if _, err := s.file.GetSection(profileSection(name)); err != nil {
		return fmt.Errorf("%q: %w", name, ErrUnknownProfile)
	}
	s.file.DeleteSection(profileSection(name))
	return s.flush()
}

// SetActiveProfile switches the profile whose suffix map drives resolution.
func (s *Store) SetActiveProfile(name string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if _, err := s.file.GetSection(profileSection(name)); err != nil {
		return fmt.Errorf("%q: %w", name, ErrUnknownProfile)
	}
	s.file.Section(generalSection).Key("ActiveProfile").SetValue(name)
	return s.flush()
}

// AddSuffix maps a new suffix in the profile. An existing mapping is never
// overwritten; the caller gets ErrDuplicateSuffix instead.
func (s *Store) AddSuffix(profile, suffix string, format formats.Format) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if suffix == "" {
		return fmt.Errorf("suffix must not be empty")
	}
	if !formats.Valid(format.String()) {
		return fmt.Errorf("unknown format %q", format)
	}
	sec := s.file.Section(profileSection(profile))
	if sec.HasKey(suffix) {
		return fmt.Errorf("%q: %w", suffix, ErrDuplicateSuffix)
	}
	sec.Key(suffix).SetValue(format.String())
	return s.flush()
}

// SetFormat updates the format of an existing suffix mapping.
func (s *Store) SetFormat(profile, suffix string, format formats.Format) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if !formats.Valid(format.String()) {
		return fmt.Errorf("unknown format %q", format)
	}
	sec := s.file.Section(profileSection(profile))
	if !sec.HasKey(suffix) {
		return fmt.Errorf("%q: %w", suffix, ErrUnknownSuffix)
	}
	sec.Key(suffix).SetValue(format.String())
	return s.flush()
}

// RemoveSuffix deletes a suffix mapping from the profile.
func (s *Store) RemoveSuffix(profile, suffix string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	sec := s.file.Section(profileSection(profile))
	if !sec.HasKey(suffix) {
		return fmt.Errorf("%q: %w", suffix, ErrUnknownSuffix)
	}
	sec.DeleteKey(suffix)
	return s.flush()
}

func (s *Store) ensure() error {
	if s.file != nil {
		return nil
	}
	_, err := s.Load()
	if err != nil && !errors.Is(err, ErrConfigCorrupted) {
		return err
	}
	return nil
}

func (s *Store) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := s.file.SaveTo(s.path); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func profileSection(name string) string {
	return name + sectionSuffix
}

func sortedSuffixes(m formats.SuffixMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) readSettings(sec *ini.Section) *Settings {
	def := defaultSettings()
	out := &Settings{
		TexConvPath:   keyString(sec, "TexConvDirectory", def.TexConvPath),
		ExportDDS:     keyBool(sec, "ExportDDSFiles", def.ExportDDS),
		OverwriteDDS:  keyBool(sec, "OverwriteDDSFiles", def.OverwriteDDS),
		AdjustRed:     keyBool(sec, "AdjustSpecularRed", def.AdjustRed),
		OutputDir:     keyString(sec, "OutputDir", def.OutputDir),
		ActiveProfile: keyString(sec, "ActiveProfile", def.ActiveProfile),
		ShowSuffixes:  keyBool(sec, "ShowSuffixes", def.ShowSuffixes),
		ShowLevels:    keyBool(sec, "ShowLevels", def.ShowLevels),
		ShowLog:       keyBool(sec, "ShowLog", def.ShowLog),
		ShowWiki:      keyBool(sec, "ShowWiki", def.ShowWiki),
	}
	out.Red.Black = keyFloat(sec, "RedMinValue", def.Red.Black)
	out.Red.White = keyFloat(sec, "RedMaxValue", def.Red.White)
	out.Red.Gamma = keyFloat(sec, "RedGamma", def.Red.Gamma)
	out.Green.Black = keyFloat(sec, "GreenBlack", def.Green.Black)
	out.Green.White = keyFloat(sec, "GreenWhite", def.Green.White)
	out.Green.Gamma = keyFloat(sec, "GreenGamma", def.Green.Gamma)
	return out
}

func (s *Store) writeSettings(sec *ini.Section, settings *Settings) {
	sec.Key("TexConvDirectory").SetValue(settings.TexConvPath)
	sec.Key("ExportDDSFiles").SetValue(strconv.FormatBool(settings.ExportDDS))
	sec.Key("OverwriteDDSFiles").SetValue(strconv.FormatBool(settings.OverwriteDDS))
	sec.Key("AdjustSpecularRed").SetValue(strconv.FormatBool(settings.AdjustRed))
	sec.Key("RedMinValue").SetValue(formatFloat(settings.Red.Black))
	sec.Key("RedMaxValue").SetValue(formatFloat(settings.Red.White))
	sec.Key("RedGamma").SetValue(formatFloat(settings.Red.Gamma))
	sec.Key("GreenBlack").SetValue(formatFloat(settings.Green.Black))
	sec.Key("GreenGamma").SetValue(formatFloat(settings.Green.Gamma))
	sec.Key("GreenWhite").SetValue(formatFloat(settings.Green.White))
	sec.Key("OutputDir").SetValue(settings.OutputDir)
	sec.Key("ActiveProfile").SetValue(settings.ActiveProfile)
	sec.Key("ShowSuffixes").SetValue(strconv.FormatBool(settings.ShowSuffixes))
	sec.Key("ShowLevels").SetValue(strconv.FormatBool(settings.ShowLevels))
	sec.Key("ShowLog").SetValue(strconv.FormatBool(settings.ShowLog))
	sec.Key("ShowWiki").SetValue(strconv.FormatBool(settings.ShowWiki))
}

func keyString(sec *ini.Section, name, def string) string {
	if !sec.HasKey(name) {
		return def
	}
	return sec.Key(name).String()
}

func keyBool(sec *ini.Section, name string, def bool) bool {
	if !sec.HasKey(name) {
		return def
	}
	v, err := sec.Key(name).Bool()
	if err != nil {
		return def
	}
	return v
}

func keyFloat(sec *ini.Section, name string, def float64) float64 {
	if !sec.HasKey(name) {
		return def
	}
	v, err := sec.Key(name).Float64()
	if err != nil {
		return def
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
