package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/texforge/texforge/internal/formats"
	"github.com/texforge/texforge/internal/levels"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(filepath.Join(t.TempDir(), "settings.ini"), logger)
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.ExportDDS || settings.OverwriteDDS || settings.AdjustRed {
		t.Error("boolean defaults should be false")
	}
	if settings.ActiveProfile != DefaultProfile {
		t.Errorf("ActiveProfile = %q, want %q", settings.ActiveProfile, DefaultProfile)
	}
	if settings.Red.Black != 0 || settings.Red.White != 255 || settings.Red.Gamma != 1.0 {
		t.Errorf("red defaults = %+v", settings.Red)
	}

	// The file must have been synthesized on disk.
	if _, err := os.Stat(store.Path()); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}

	data, _ := os.ReadFile(store.Path())
	for _, key := range []string{"TexConvDirectory", "ExportDDSFiles", "RedMinValue", "GreenGamma"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("settings file missing key %s (case must be preserved)", key)
		}
	}
}

func TestLoadCorruptedFileResetsToDefaults(t *testing.T) {
	store := newTestStore(t)
	garbage := "[General\nthis is not = = valid ini\x00"
	if err := os.WriteFile(store.Path(), []byte(garbage), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := store.Load()
	if !errors.Is(err, ErrConfigCorrupted) {
		t.Fatalf("Load err = %v, want ErrConfigCorrupted", err)
	}
	if settings == nil {
		t.Fatal("Load must still return usable settings after a reset")
	}
	if settings.ActiveProfile != DefaultProfile {
		t.Errorf("ActiveProfile = %q after reset", settings.ActiveProfile)
	}

	// Subsequent loads see the rewritten defaults and succeed cleanly.
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load after reset: %v", err)
	}
}

func TestLoadMissingKeysFallBackPerKey(t *testing.T) {
	store := newTestStore(t)
	// File written by an early schema version: no levels keys, no profiles,
	// no ActiveProfile.
	old := "[General]\nTexConvDirectory = /opt/texconv/texconv.exe\nExportDDSFiles = True\n"
	if err := os.WriteFile(store.Path(), []byte(old), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.TexConvPath != "/opt/texconv/texconv.exe" {
		t.Errorf("TexConvPath = %q", settings.TexConvPath)
	}
	if !settings.ExportDDS {
		t.Error("ExportDDSFiles = True should parse")
	}
	if settings.Red.Gamma != 1.0 || settings.Green.White != 255 {
		t.Errorf("missing levels keys did not default: %+v %+v", settings.Red, settings.Green)
	}
	if settings.ActiveProfile != DefaultProfile {
		t.Errorf("missing ActiveProfile did not default: %q", settings.ActiveProfile)
	}
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load(); err != nil {
		t.Fatal(err)
	}

	want := &Settings{
		TexConvPath:   "/tools/texconv",
		ExportDDS:     true,
		OverwriteDDS:  true,
		AdjustRed:     true,
		Red:           levels.Channel{Black: 30, Gamma: 1.25, White: 145},
		Green:         levels.Channel{Black: 10, Gamma: 0.8, White: 200},
		OutputDir:     "/out/dds",
		ActiveProfile: "Skyrim",
		ShowSuffixes:  false,
		ShowLevels:    true,
		ShowLog:       false,
		ShowWiki:      true,
	}
	suffixes := formats.SuffixMap{
		"d": "BC1_UNORM",
		"n": "BC5_UNORM",
		"D": "BC3_UNORM", // distinct from "d": storage is case-sensitive
		"e": "BC6H_UF16",
	}
	if err := store.Save(want, "Skyrim", suffixes); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Reload through a fresh store to prove the file carries everything.
	fresh := NewStore(store.Path(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	got, err := fresh.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *got != *want {
		t.Errorf("settings round-trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	gotMap, err := fresh.LoadProfile("Skyrim")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(gotMap) != len(suffixes) {
		t.Fatalf("suffix map size = %d, want %d", len(gotMap), len(suffixes))
	}
	for k, v := range suffixes {
		if gotMap[k] != v {
			t.Errorf("suffix %q = %q, want %q", k, gotMap[k], v)
		}
	}
}

func TestSaveClearsStaleEntries(t *testing.T) {
	store := newTestStore(t)
	settings, _ := store.Load()

	if err := store.Save(settings, "P", formats.SuffixMap{"d": "BC1_UNORM", "n": "BC5_UNORM"}); err != nil {
		t.Fatal(err)
	}
	// Rewrite with "n" deleted. Clear-then-rewrite must not resurrect it.
	if err := store.Save(settings, "P", formats.SuffixMap{"d": "BC1_UNORM"}); err != nil {
		t.Fatal(err)
	}

	m, err := store.LoadProfile("P")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["n"]; ok {
		t.Error("deleted suffix survived a save")
	}
	if m["d"] != "BC1_UNORM" {
		t.Errorf("kept suffix lost: %v", m)
	}
}

func TestLoadProfileLazilyMaterialized(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load(); err != nil {
		t.Fatal(err)
	}

	m, err := store.LoadProfile("Fallout")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("new profile should be empty, got %v", m)
	}

	names, err := store.ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range names {
		if n == "Fallout" {
			found = true
		}
	}
	if !found {
		t.Errorf("lazily created profile not persisted: %v", names)
	}
}

func TestLoadProfileDuplicateKeyFirstWins(t *testing.T) {
	store := newTestStore(t)
	content := "[General]\n\n[Default_SuffixFormats]\nd = BC1_UNORM\nn = BC5_UNORM\nd = BC7_UNORM\n"
	if err := os.WriteFile(store.Path(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := store.LoadProfile(DefaultProfile)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if m["d"] != "BC1_UNORM" {
		t.Errorf("duplicate key: got %q, first occurrence must win", m["d"])
	}
	if m["n"] != "BC5_UNORM" {
		t.Errorf("unrelated key damaged: %q", m["n"])
	}
}

func TestListProfilesSynthesizesDefault(t *testing.T) {
	store := newTestStore(t)
	names, err := store.ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != DefaultProfile {
		t.Errorf("ListProfiles = %v, want [%s]", names, DefaultProfile)
	}
}

func TestDeleteProfileProtectsDefault(t *testing.T) {
	store := newTestStore(t)
	settings, _ := store.Load()
	if err := store.Save(settings, DefaultProfile, formats.SuffixMap{"d": "BC1_UNORM"}); err != nil {
		t.Fatal(err)
	}
	// A few other profiles existing changes nothing.
	if err := store.AddSuffix("Other", "n", "BC5_UNORM"); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteProfile(DefaultProfile); !errors.Is(err, ErrProtectedProfile) {
		t.Fatalf("DeleteProfile(Default) err = %v, want ErrProtectedProfile", err)
	}

	m, err := store.LoadProfile(DefaultProfile)
	if err != nil {
		t.Fatal(err)
	}
	if m["d"] != "BC1_UNORM" {
		t.Error("rejected delete must leave the suffix map unchanged")
	}
}

func TestDeleteProfileProtectsActive(t *testing.T) {
	store := newTestStore(t)
	settings, _ := store.Load()
	if _, err := store.LoadProfile("Live"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetActiveProfile("Live"); err != nil {
		t.Fatal(err)
	}
	settings.ActiveProfile = "Live"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteProfile("Live"); !errors.Is(err, ErrProtectedProfile) {
		t.Fatalf("deleting active profile err = %v, want ErrProtectedProfile", err)
	}

	// A non-active, non-default profile deletes fine.
	if _, err := store.LoadProfile("Old"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteProfile("Old"); err != nil {
		t.Fatalf("DeleteProfile(Old): %v", err)
	}
	if err := store.DeleteProfile("Old"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("second delete err = %v, want ErrUnknownProfile", err)
	}
}

func TestAddSuffixRejectsDuplicate(t *testing.T) {
	store := newTestStore(t)
	if err := store.AddSuffix(DefaultProfile, "d", "BC1_UNORM"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddSuffix(DefaultProfile, "d", "BC7_UNORM"); !errors.Is(err, ErrDuplicateSuffix) {
		t.Fatalf("err = %v, want ErrDuplicateSuffix", err)
	}

	m, _ := store.LoadProfile(DefaultProfile)
	if m["d"] != "BC1_UNORM" {
		t.Error("rejected add must preserve the existing mapping")
	}

	// Differently-cased keys are distinct entries, not duplicates.
	if err := store.AddSuffix(DefaultProfile, "D", "BC3_UNORM"); err != nil {
		t.Fatalf("adding differently-cased suffix: %v", err)
	}
}

func TestAddSuffixRejectsUnknownFormat(t *testing.T) {
	store := newTestStore(t)
	if err := store.AddSuffix(DefaultProfile, "d", "DXT1"); err == nil {
		t.Fatal("expected error for unknown format identifier")
	}
}

func TestSetAndRemoveSuffix(t *testing.T) {
	store := newTestStore(t)
	if err := store.AddSuffix(DefaultProfile, "d", "BC1_UNORM"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetFormat(DefaultProfile, "d", "BC3_UNORM"); err != nil {
		t.Fatal(err)
	}
	m, _ := store.LoadProfile(DefaultProfile)
	if m["d"] != "BC3_UNORM" {
		t.Errorf("SetFormat did not stick: %q", m["d"])
	}

	if err := store.RemoveSuffix(DefaultProfile, "d"); err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveSuffix(DefaultProfile, "d"); !errors.Is(err, ErrUnknownSuffix) {
		t.Fatalf("err = %v, want ErrUnknownSuffix", err)
	}
	if err := store.SetFormat(DefaultProfile, "zz", "BC1_UNORM"); !errors.Is(err, ErrUnknownSuffix) {
		t.Fatalf("err = %v, want ErrUnknownSuffix", err)
	}
}

func TestClampOnSave(t *testing.T) {
	store := newTestStore(t)
	settings, _ := store.Load()
	settings.Red = levels.Channel{Black: 250, Gamma: 99, White: 40}
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Red.Black >= got.Red.White {
		t.Errorf("persisted black %v >= white %v", got.Red.Black, got.Red.White)
	}
	if got.Red.Gamma > levels.GammaMax {
		t.Errorf("persisted gamma %v above max", got.Red.Gamma)
	}
}
