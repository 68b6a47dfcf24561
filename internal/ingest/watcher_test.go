package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recap/internal/queue"
)

func newTestWatcher(t *testing.T) (*DropWatcher, *queue.Store, string) {
	t.Helper()
	dir := t.TempDir()
	dropDir := filepath.Join(dir, "drop")
	cacheDir := filepath.Join(dir, "cache")
	if err := os.MkdirAll(dropDir, 0o755); err != nil {
		t.Fatalf("mkdir drop: %v", err)
	}

	store, err := queue.Open(filepath.Join(dir, "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	watcher, err := NewDropWatcher(dropDir, cacheDir, store, nil)
	if err != nil {
		t.Fatalf("NewDropWatcher: %v", err)
	}
	return watcher, store, dropDir
}

func TestIngestFileEnqueuesTranscript(t *testing.T) {
	watcher, store, dropDir := newTestWatcher(t)
	ctx := context.Background()

	path := filepath.Join(dropDir, "great_interview-part2.txt")
	if err := os.WriteFile(path, []byte("a full transcript of the interview"), 0o644); err != nil {
		t.Fatalf("write drop file: %v", err)
	}

	video, err := watcher.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if video.Status != queue.StatusFetched {
		t.Fatalf("Status = %q, want fetched", video.Status)
	}
	if video.ChannelID != ManualChannelID {
		t.Fatalf("ChannelID = %q", video.ChannelID)
	}
	if video.Title != "great interview part2" {
		t.Fatalf("Title = %q", video.Title)
	}
	if video.TranscriptChars == 0 {
		t.Fatal("TranscriptChars not recorded")
	}

	cached, err := os.ReadFile(video.TranscriptPath)
	if err != nil {
		t.Fatalf("read cached transcript: %v", err)
	}
	if string(cached) != "a full transcript of the interview" {
		t.Fatalf("cached content = %q", cached)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("drop file not removed after ingestion")
	}

	stored, err := store.GetByID(ctx, video.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: %v %v", stored, err)
	}
}

func TestIngestFileParsesVTT(t *testing.T) {
	watcher, _, dropDir := newTestWatcher(t)

	content := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nSpoken words here.\n"
	path := filepath.Join(dropDir, "talk.vtt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write drop file: %v", err)
	}

	video, err := watcher.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	cached, err := os.ReadFile(video.TranscriptPath)
	if err != nil {
		t.Fatalf("read cached transcript: %v", err)
	}
	if string(cached) != "Spoken words here." {
		t.Fatalf("cached content = %q", cached)
	}
}

func TestIngestFileRejectsEmpty(t *testing.T) {
	watcher, _, dropDir := newTestWatcher(t)

	path := filepath.Join(dropDir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("write drop file: %v", err)
	}

	if _, err := watcher.IngestFile(context.Background(), path); err == nil || !strings.Contains(err.Error(), "no usable text") {
		t.Fatalf("expected rejection, got %v", err)
	}
	if _, err := os.Stat(path + ".rejected"); err != nil {
		t.Fatalf("rejected file not set aside: %v", err)
	}
}

func TestSweepIngestsExistingFiles(t *testing.T) {
	watcher, store, dropDir := newTestWatcher(t)
	ctx := context.Background()

	for _, name := range []string{"one.txt", "two.txt", "ignored.mp4"} {
		if err := os.WriteFile(filepath.Join(dropDir, name), []byte("transcript body"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := watcher.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	videos, err := store.VideosByStatus(ctx, queue.StatusFetched)
	if err != nil {
		t.Fatalf("VideosByStatus: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d queued videos, want 2", len(videos))
	}
}
