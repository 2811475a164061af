package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/texforge/texforge/internal/config"
	"github.com/texforge/texforge/internal/formats"
	"github.com/texforge/texforge/internal/levels"
	"github.com/texforge/texforge/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFactory(t *testing.T, exportDDS bool, m formats.SuffixMap) PipelineFactory {
	t.Helper()
	encoder := filepath.Join(t.TempDir(), "texconv")
	// A trivial shell stand-in for texconv: the sync pipeline only needs an
	// executable that exits zero.
	if err := os.WriteFile(encoder, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	settings := &config.Settings{
		TexConvPath:   encoder,
		ExportDDS:     exportDDS,
		Red:           levels.Identity,
		Green:         levels.Identity,
		ActiveProfile: config.DefaultProfile,
	}
	return func() (*pipeline.Pipeline, *config.Settings, error) {
		return pipeline.New(settings, m, discardLogger()), settings, nil
	}
}

func TestHandleExportDisabled(t *testing.T) {
	b := New(testFactory(t, false, formats.SuffixMap{}), discardLogger())

	outcomes, err := b.HandleExport(context.Background(), &ExportResult{
		Message:  "Export finished",
		Textures: map[string][]string{"set": {"/x/a.png", "/x/b.png"}},
	})
	if err != nil {
		t.Fatalf("HandleExport: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("disabled export must emit exactly one message, got %d", len(outcomes))
	}
	if outcomes[0].Status != pipeline.StatusIgnored {
		t.Errorf("status = %s", outcomes[0].Status)
	}
}

func TestFlattenDeterministicOrder(t *testing.T) {
	res := &ExportResult{Textures: map[string][]string{
		"zset": {"/z/1.png", "/z/2.png"},
		"aset": {"/a/1.png"},
	}}
	want := []string{"/a/1.png", "/z/1.png", "/z/2.png"}
	got := res.Flatten()
	if len(got) != len(want) {
		t.Fatalf("Flatten = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Flatten[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHandleExportRelaysOutcomesInOrder(t *testing.T) {
	dir := t.TempDir()
	// Non-image files: processed to Ignored outcomes without touching an
	// encoder, which is enough to check count and ordering.
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	br := New(testFactory(t, true, formats.SuffixMap{}), discardLogger())
	outcomes, err := br.HandleExport(context.Background(), &ExportResult{
		Textures: map[string][]string{"set": {a, b}},
	})
	if err != nil {
		t.Fatalf("HandleExport: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Path != a || outcomes[1].Path != b {
		t.Errorf("outcomes out of order: %v", outcomes)
	}
}

func TestServerExportFinished(t *testing.T) {
	b := New(testFactory(t, false, formats.SuffixMap{}), discardLogger())
	srv := NewServer("127.0.0.1:0", b, discardLogger())

	body, _ := json.Marshal(ExportResult{
		Message:  "done",
		Textures: map[string][]string{},
	})
	req := httptest.NewRequest(http.MethodPost, "/export-finished", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Outcomes []outcomeJSON `json:"outcomes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Outcomes) != 1 || resp.Outcomes[0].Status != "ignored" {
		t.Errorf("response = %+v", resp)
	}
}

func TestServerRejectsGet(t *testing.T) {
	b := New(testFactory(t, true, formats.SuffixMap{}), discardLogger())
	srv := NewServer("127.0.0.1:0", b, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/export-finished", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestServerInvalidEncoderPath(t *testing.T) {
	settings := &config.Settings{
		TexConvPath:   "/nonexistent/texconv",
		ExportDDS:     true,
		Red:           levels.Identity,
		Green:         levels.Identity,
		ActiveProfile: config.DefaultProfile,
	}
	factory := func() (*pipeline.Pipeline, *config.Settings, error) {
		return pipeline.New(settings, formats.SuffixMap{}, discardLogger()), settings, nil
	}
	srv := NewServer("127.0.0.1:0", New(factory, discardLogger()), discardLogger())

	body, _ := json.Marshal(ExportResult{
		Textures: map[string][]string{"set": {"/x/a.png"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/export-finished", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
