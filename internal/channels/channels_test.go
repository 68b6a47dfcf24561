package channels

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write channels file: %v", err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
channels:
  - id: UCabc123
    name: Tech Weekly
    url: https://www.youtube.com/@techweekly
    creator_context: A weekly show covering consumer tech news.
  - url: https://www.youtube.com/@quiet-gardener/videos
  - id: UCdisabled
    name: Paused Channel
    disabled: true
`)

	registry, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if registry.Len() != 3 {
		t.Fatalf("Len = %d, want 3", registry.Len())
	}

	enabled := registry.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("Enabled = %d channels, want 2", len(enabled))
	}

	first, ok := registry.Get("UCabc123")
	if !ok {
		t.Fatal("channel UCabc123 not found")
	}
	if first.DisplayName() != "Tech Weekly" {
		t.Fatalf("DisplayName = %q", first.DisplayName())
	}
	if !strings.Contains(first.CreatorContext, "consumer tech") {
		t.Fatalf("CreatorContext = %q", first.CreatorContext)
	}
}

func TestDisplayNameFromHandle(t *testing.T) {
	channel := Channel{URL: "https://www.youtube.com/@quiet-gardener/videos"}
	if got := channel.DisplayName(); got != "Quiet Gardener" {
		t.Fatalf("DisplayName = %q, want %q", got, "Quiet Gardener")
	}
}

func TestSourceURLFallsBackToChannelID(t *testing.T) {
	channel := Channel{ID: "UCabc123"}
	want := "https://www.youtube.com/channel/UCabc123"
	if got := channel.SourceURL(); got != want {
		t.Fatalf("SourceURL = %q, want %q", got, want)
	}
}

func TestLoadMissingFileYieldsEmptyRegistry(t *testing.T) {
	registry, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if registry.Len() != 0 {
		t.Fatalf("Len = %d, want 0", registry.Len())
	}
	if enabled := registry.Enabled(); len(enabled) != 0 {
		t.Fatalf("Enabled = %d, want 0", len(enabled))
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := writeRegistry(t, `
channels:
  - id: UCabc123
  - id: UCabc123
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLoadRejectsEmptyEntry(t *testing.T) {
	path := writeRegistry(t, `
channels:
  - name: No Address
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "id or url") {
		t.Fatalf("expected missing id error, got %v", err)
	}
}
