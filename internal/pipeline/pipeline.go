// Package pipeline orchestrates texture conversion: levels adjustment for
// specular maps, suffix-driven format resolution, and invocation of the
// external texconv encoder with skip/overwrite handling.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/texforge/texforge/internal/config"
	"github.com/texforge/texforge/internal/formats"
	"github.com/texforge/texforge/internal/levels"
)

// ErrInvalidEncoderPath means the configured texconv executable does not
// exist. It is detected once per batch, before any file is touched.
var ErrInvalidEncoderPath = errors.New("texconv executable not found")

// Status classifies the outcome of processing one file.
type Status string

const (
	// StatusConverted: the encoder ran and exited zero.
	StatusConverted Status = "converted"
	// StatusSkipped: the output already exists and overwrite is off.
	StatusSkipped Status = "skipped"
	// StatusFailed: levels adjustment or the encoder failed for this file.
	StatusFailed Status = "failed"
	// StatusIgnored: not a convertible file type; not an error.
	StatusIgnored Status = "ignored"
)

// Outcome reports the result of processing one file. Every file fed to the
// pipeline produces exactly one Outcome.
type Outcome struct {
	Path    string
	Format  formats.Format
	Status  Status
	Message string
}

// Recorder receives terminal outcomes, typically for the history journal.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Pipeline converts a batch of exported textures. It works off an immutable
// snapshot of the settings and the active profile's suffix map taken at
// construction, so profile edits during a run never affect files in flight.
type Pipeline struct {
	settings  *config.Settings
	suffixes  formats.SuffixMap
	logger    *slog.Logger
	recorder  Recorder
	workers   int
	onOutcome func(Outcome)

	// run is swapped out by tests to avoid spawning real processes.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder attaches a journal recorder for terminal outcomes.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithWorkers caps batch concurrency. Zero picks a default bounded by the
// CPU count.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithOnOutcome registers a callback invoked as each file in a batch
// finishes, for progress reporting. Called from worker goroutines.
func WithOnOutcome(fn func(Outcome)) Option {
	return func(p *Pipeline) { p.onOutcome = fn }
}

// New builds a pipeline over snapshots of the given settings and suffix map.
func New(settings *config.Settings, suffixes formats.SuffixMap, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		settings: settings.Clone(),
		suffixes: suffixes.Clone(),
		logger:   logger,
		run:      runEncoder,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateEncoder checks that the configured texconv path points at an
// existing file. Called once per batch; without a working encoder there is
// nothing useful to do.
func (p *Pipeline) ValidateEncoder() error {
	info, err := os.Stat(p.settings.TexConvPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%q: %w", p.settings.TexConvPath, ErrInvalidEncoderPath)
	}
	return nil
}

// Convert processes a single exported file and returns its outcome. Errors
// are folded into the outcome; Convert itself never fails the batch.
func (p *Pipeline) Convert(ctx context.Context, path string) Outcome {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".tga" {
		return p.record(ctx, Outcome{
			Path:    path,
			Status:  StatusIgnored,
			Message: fmt.Sprintf("Ignoring %s: not a png or tga file", base),
		})
	}

	outDir := p.settings.OutputDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(path), "DDS")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return p.record(ctx, Outcome{
			Path:    path,
			Status:  StatusFailed,
			Message: fmt.Sprintf("Failed to create output folder for %s: %v", base, err),
		})
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(outDir, stem+".dds")

	if p.settings.AdjustRed && isSpecular(base) {
		if err := levels.AdjustFile(path, p.settings.Red, p.settings.Green); err != nil {
			// The backup made before the failure stays on disk; this file is
			// aborted, the rest of the batch proceeds.
			return p.record(ctx, Outcome{
				Path:    path,
				Status:  StatusFailed,
				Message: fmt.Sprintf("Levels adjustment failed for %s: %v", base, err),
			})
		}
		p.logger.Debug("adjusted specular levels", "file", base)
	}

	format, suffix, err := p.suffixes.Resolve(base)
	if err != nil {
		p.logger.Warn("suffix parse failed, using default format",
			"file", base, "error", err)
	}
	p.logger.Debug("resolved format", "file", base, "suffix", suffix, "format", format)

	if !p.settings.OverwriteDDS {
		if _, err := os.Stat(outPath); err == nil {
			return p.record(ctx, Outcome{
				Path:    path,
				Format:  format,
				Status:  StatusSkipped,
				Message: fmt.Sprintf("Skipping %s: %s already exists and overwrite is disabled", base, filepath.Base(outPath)),
			})
		}
	}

	args := []string{"-nologo"}
	if p.settings.OverwriteDDS {
		args = append(args, "-y")
	}
	args = append(args, "-o", outDir, "-f", format.String(), path)

	if out, err := p.run(ctx, p.settings.TexConvPath, args...); err != nil {
		return p.record(ctx, Outcome{
			Path:    path,
			Format:  format,
			Status:  StatusFailed,
			Message: fmt.Sprintf("Failed to convert %s: %v%s", base, err, encoderTail(out)),
		})
	}

	return p.record(ctx, Outcome{
		Path:    path,
		Format:  format,
		Status:  StatusConverted,
		Message: fmt.Sprintf("Converted %s to %s with format %s", base, outPath, format),
	})
}

func (p *Pipeline) record(ctx context.Context, o Outcome) Outcome {
	if p.recorder != nil {
		if err := p.recorder.Record(ctx, o); err != nil {
			p.logger.Warn("journal write failed", "file", o.Path, "error", err)
		}
	}
	return o
}

// isSpecular matches the *_s.png / *_s.tga specular-map naming convention,
// case-insensitively.
func isSpecular(base string) bool {
	lower := strings.ToLower(base)
	return strings.HasSuffix(lower, "_s.png") || strings.HasSuffix(lower, "_s.tga")
}

// runEncoder invokes texconv synchronously and checks its exit code, so
// encoder failures surface in this batch's outcomes rather than only in the
// encoder's own output. The bounded worker pool in ConvertBatch keeps the
// caller from stalling on any one file.
func runEncoder(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return buf.Bytes(), fmt.Errorf("texconv exited with code %d", exitErr.ExitCode())
		}
		return buf.Bytes(), fmt.Errorf("launching texconv: %w", err)
	}
	return buf.Bytes(), nil
}

func encoderTail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return ""
	}
	// Keep the last line; texconv prints its diagnostics there.
	lines := strings.Split(s, "\n")
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}
