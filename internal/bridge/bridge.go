// Package bridge receives the host application's "textures exported"
// notification and feeds the produced files through the conversion pipeline.
package bridge

import (
	"context"
	"log/slog"
	"sort"

	"github.com/texforge/texforge/internal/config"
	"github.com/texforge/texforge/internal/pipeline"
)

// ExportResult is the notification the host delivers once after an export
// completes: a human-readable status message plus the produced file paths
// grouped by output kind (texture set, channel, etc.).
type ExportResult struct {
	Message  string              `json:"message"`
	Textures map[string][]string `json:"textures"`
}

// Flatten returns all produced paths in a deterministic order: kinds sorted
// alphabetically, paths in the order the host listed them.
func (r *ExportResult) Flatten() []string {
	kinds := make([]string, 0, len(r.Textures))
	for kind := range r.Textures {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var paths []string
	for _, kind := range kinds {
		paths = append(paths, r.Textures[kind]...)
	}
	return paths
}

// PipelineFactory builds a pipeline over a fresh settings/profile snapshot.
// Taking the snapshot per notification means a profile edit between exports
// applies to the next batch but never to one already running.
type PipelineFactory func() (*pipeline.Pipeline, *config.Settings, error)

// Bridge connects export notifications to the pipeline.
type Bridge struct {
	factory PipelineFactory
	logger  *slog.Logger
}

// New creates a bridge using factory for per-batch pipeline construction.
func New(factory PipelineFactory, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{factory: factory, logger: logger}
}

// HandleExport processes one export notification and returns the outcome per
// file, in the order the files were encountered.
//
// When DDS export is disabled a single informational outcome is returned and
// nothing is converted. An unusable encoder path aborts the batch with the
// error; per-file problems are folded into outcomes by the pipeline.
func (b *Bridge) HandleExport(ctx context.Context, res *ExportResult) ([]pipeline.Outcome, error) {
	p, settings, err := b.factory()
	if err != nil {
		return nil, err
	}

	if !settings.ExportDDS {
		b.logger.Info("DDS export disabled, ignoring export notification")
		return []pipeline.Outcome{{
			Status:  pipeline.StatusIgnored,
			Message: "DDS export is disabled. No files will be processed.",
		}}, nil
	}

	if res.Message != "" {
		b.logger.Info("export finished", "message", res.Message)
	}

	paths := res.Flatten()
	b.logger.Info("converting exported textures", "files", len(paths),
		"profile", settings.ActiveProfile)

	return p.ConvertBatch(ctx, paths)
}
