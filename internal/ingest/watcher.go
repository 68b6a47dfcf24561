package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/services/ytdlp"
	"recap/internal/textutil"
)

// ManualChannelID marks queue items that arrived through the drop folder
// rather than a monitored channel.
const ManualChannelID = "manual"

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

var subtitleExtensions = map[string]bool{
	".vtt": true,
	".srt": true,
	".txt": true,
}

// DropWatcher ingests transcript files placed in a drop directory. Each file
// becomes a queue item in the fetched state, ready for summarization.
type DropWatcher struct {
	dir      string
	cacheDir string
	store    *queue.Store
	logger   *slog.Logger
}

// NewDropWatcher creates a watcher over the given drop directory.
func NewDropWatcher(dir, cacheDir string, store *queue.Store, logger *slog.Logger) (*DropWatcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("ingest: drop directory required")
	}
	if store == nil {
		return nil, fmt.Errorf("ingest: queue store required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DropWatcher{
		dir:      dir,
		cacheDir: cacheDir,
		store:    store,
		logger:   logging.WithComponent(logger, "ingest"),
	}, nil
}

// Run sweeps the drop directory for existing files, then watches for new ones
// until the context is cancelled.
func (w *DropWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("ingest: ensure drop dir: %w", err)
	}

	if err := w.Sweep(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ingest: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("ingest: watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching drop directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("ingest: watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !subtitleExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			select {
			case <-time.After(settleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			if _, err := w.IngestFile(ctx, event.Name); err != nil {
				w.logger.Error("drop file ingestion failed", "path", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("ingest: watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Sweep ingests every eligible file already present in the drop directory.
func (w *DropWatcher) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("ingest: read drop dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !subtitleExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if _, err := w.IngestFile(ctx, path); err != nil {
			w.logger.Error("drop file ingestion failed", "path", path, "error", err)
		}
	}
	return nil
}

// IngestFile converts one dropped subtitle or text file into a queue item.
// The original file is removed once its content is cached.
func (w *DropWatcher) IngestFile(ctx context.Context, path string) (*queue.Video, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt", ".srt":
		text = ytdlp.ParseSubtitles(string(raw))
	default:
		text = strings.TrimSpace(string(raw))
	}
	if text == "" {
		rejected := path + ".rejected"
		if err := os.Rename(path, rejected); err != nil {
			return nil, fmt.Errorf("ingest: %s has no usable text and could not be set aside: %w", path, err)
		}
		return nil, fmt.Errorf("ingest: %s has no usable text", path)
	}

	id := uuid.NewString()
	transcriptPath := path
	if w.cacheDir != "" {
		if err := os.MkdirAll(w.cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("ingest: ensure cache dir: %w", err)
		}
		transcriptPath = filepath.Join(w.cacheDir, "manual-"+id+".txt")
		if err := os.WriteFile(transcriptPath, []byte(text), 0o644); err != nil {
			return nil, fmt.Errorf("ingest: cache transcript: %w", err)
		}
	}

	title := titleFromPath(path)
	video, err := w.store.NewVideo(ctx, &queue.Video{
		VideoID:         "manual-" + id,
		ChannelID:       ManualChannelID,
		ChannelName:     "Manual Drop",
		Title:           title,
		Status:          queue.StatusFetched,
		TranscriptPath:  transcriptPath,
		TranscriptChars: len(text),
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: enqueue %s: %w", path, err)
	}

	if transcriptPath != path {
		if err := os.Remove(path); err != nil {
			w.logger.Warn("could not remove ingested drop file", "path", path, "error", err)
		}
	}

	w.logger.Info("drop file ingested",
		logging.FieldItemID, video.ID,
		"title", title,
		"chars", len(text))
	return video, nil
}

// titleFromPath derives a display title from a dropped file's name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	title := textutil.SanitizeFileName(base)
	if title == "" {
		return "Untitled transcript"
	}
	return title
}
