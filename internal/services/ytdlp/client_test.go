package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Config{CacheDir: t.TempDir()}, nil)
}

func TestListRecentParsesFlatPlaylist(t *testing.T) {
	client := newTestClient(t)
	client.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != DefaultBinary {
			t.Fatalf("binary = %q", name)
		}
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "--flat-playlist") || !strings.Contains(joined, "--playlist-end 3") {
			t.Fatalf("unexpected args: %v", args)
		}
		return []byte(`{"id":"vid1","title":"First Video","webpage_url":"https://www.youtube.com/watch?v=vid1","channel_id":"UCabc","channel":"Tech Weekly","timestamp":1755000000}
{"id":"vid2","title":"Live Now","live_status":"is_live"}
{"id":"vid3","title":"Older Video","upload_date":"20250810","uploader":"Tech Weekly"}
`), nil
	})

	videos, err := client.ListRecent(context.Background(), "https://www.youtube.com/@techweekly", 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2 (live entry skipped)", len(videos))
	}

	first := videos[0]
	if first.ID != "vid1" || first.ChannelName != "Tech Weekly" {
		t.Fatalf("first video = %+v", first)
	}
	if first.PublishedAt.IsZero() {
		t.Fatal("timestamp not parsed")
	}

	second := videos[1]
	if second.URL != "https://www.youtube.com/watch?v=vid3" {
		t.Fatalf("fallback URL = %q", second.URL)
	}
	if second.PublishedAt != time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("upload_date parsed as %v", second.PublishedAt)
	}
}

func TestDownloadTranscriptConvertsSubtitles(t *testing.T) {
	client := newTestClient(t)
	client.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		joined := strings.Join(args, " ")
		if !strings.Contains(joined, "--write-auto-subs") {
			t.Fatalf("auto subs not requested: %v", args)
		}
		subPath := filepath.Join(client.cacheDir, "vid1.en.vtt")
		content := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nHello there.\n\n00:00:02.000 --> 00:00:04.000\nGeneral remarks follow.\n"
		if err := os.WriteFile(subPath, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		return nil, nil
	})

	transcript, err := client.DownloadTranscript(context.Background(), "vid1", "")
	if err != nil {
		t.Fatalf("DownloadTranscript: %v", err)
	}
	if transcript.Text != "Hello there.\nGeneral remarks follow." {
		t.Fatalf("Text = %q", transcript.Text)
	}
	if transcript.Language != "en" {
		t.Fatalf("Language = %q", transcript.Language)
	}
	if _, err := os.Stat(transcript.Path); err != nil {
		t.Fatalf("cached transcript missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(client.cacheDir, "vid1.en.vtt")); !os.IsNotExist(err) {
		t.Fatal("raw subtitle file not cleaned up")
	}
}

func TestDownloadTranscriptUsesCache(t *testing.T) {
	client := newTestClient(t)
	cached := filepath.Join(client.cacheDir, "vid9.txt")
	if err := os.WriteFile(cached, []byte("cached transcript"), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	client.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("yt-dlp invoked despite cache hit")
		return nil, nil
	})

	transcript, err := client.DownloadTranscript(context.Background(), "vid9", "")
	if err != nil {
		t.Fatalf("DownloadTranscript: %v", err)
	}
	if transcript.Text != "cached transcript" {
		t.Fatalf("Text = %q", transcript.Text)
	}
}

func TestDownloadTranscriptNoCaptions(t *testing.T) {
	client := newTestClient(t)
	client.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})

	transcript, err := client.DownloadTranscript(context.Background(), "vid2", "")
	if err != nil {
		t.Fatalf("DownloadTranscript: %v", err)
	}
	if transcript.Text != "" || transcript.Path != "" {
		t.Fatalf("expected empty transcript, got %+v", transcript)
	}
}

func TestDownloadTranscriptLanguageVariantFallback(t *testing.T) {
	client := newTestClient(t)
	client.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		subPath := filepath.Join(client.cacheDir, "vid5.en-US.vtt")
		content := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nVariant language caption.\n"
		return nil, os.WriteFile(subPath, []byte(content), 0o644)
	})

	transcript, err := client.DownloadTranscript(context.Background(), "vid5", "")
	if err != nil {
		t.Fatalf("DownloadTranscript: %v", err)
	}
	if transcript.Language != "en-US" {
		t.Fatalf("Language = %q", transcript.Language)
	}
	if transcript.Text != "Variant language caption." {
		t.Fatalf("Text = %q", transcript.Text)
	}
}
