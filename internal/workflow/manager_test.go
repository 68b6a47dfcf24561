package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recap/internal/config"
	"recap/internal/queue"
	"recap/internal/services/ytdlp"
	"recap/internal/summarize"
	"recap/internal/telegram"
)

type fakeFetcher struct {
	videos      []ytdlp.VideoInfo
	transcript  ytdlp.Transcript
	listErr     error
	downloadErr error

	listCalls     int
	downloadCalls int
}

func (f *fakeFetcher) ListRecent(ctx context.Context, channelURL string, limit int) ([]ytdlp.VideoInfo, error) {
	f.listCalls++
	return f.videos, f.listErr
}

func (f *fakeFetcher) DownloadTranscript(ctx context.Context, videoID, videoURL string) (ytdlp.Transcript, error) {
	f.downloadCalls++
	return f.transcript, f.downloadErr
}

type fakeEngine struct {
	result     summarize.Result
	calls      int
	gotContent string
	gotContext string
}

func (f *fakeEngine) Summarize(ctx context.Context, content, creatorContext string) summarize.Result {
	f.calls++
	f.gotContent = content
	f.gotContext = creatorContext
	return f.result
}

type fakeNotifier struct {
	summaries  []telegram.Announcement
	errorCalls int
	summaryErr error
}

func (f *fakeNotifier) NotifySummary(ctx context.Context, a telegram.Announcement) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaries = append(f.summaries, a)
	return nil
}

func (f *fakeNotifier) NotifyError(ctx context.Context, err error, contextLabel string) error {
	f.errorCalls++
	return nil
}

func (f *fakeNotifier) TestNotification(ctx context.Context) error { return nil }

type testHarness struct {
	manager  *Manager
	store    *queue.Store
	fetcher  *fakeFetcher
	engine   *fakeEngine
	notifier *fakeNotifier
	cfg      *config.Config
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Channels.ConfigPath = filepath.Join(dir, "channels.yaml")
	cfg.Channels.MaxVideosPerPoll = 5
	cfg.Channels.PollIntervalMinutes = 30
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.Telegram.Errors = true

	store, err := queue.Open(filepath.Join(dir, "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fetcher := &fakeFetcher{}
	engine := &fakeEngine{}
	notifier := &fakeNotifier{}

	manager, err := NewManager(cfg, store, fetcher, engine, notifier, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &testHarness{manager: manager, store: store, fetcher: fetcher, engine: engine, notifier: notifier, cfg: cfg}
}

func writeChannels(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write channels: %v", err)
	}
}

func TestPollChannelsEnqueuesNewUploads(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	writeChannels(t, h.cfg.Channels.ConfigPath, `
channels:
  - id: UCabc
    name: Tech Weekly
    creator_context: Consumer tech news.
`)
	h.fetcher.videos = []ytdlp.VideoInfo{
		{ID: "vid1", Title: "First", URL: "https://youtu.be/vid1"},
		{ID: "vid2", Title: "Second", URL: "https://youtu.be/vid2", ChannelName: "Override Name"},
	}

	if err := h.manager.PollChannels(ctx); err != nil {
		t.Fatalf("PollChannels: %v", err)
	}

	pending, err := h.store.VideosByStatus(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("VideosByStatus: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending videos, want 2", len(pending))
	}
	if pending[0].ChannelName != "Tech Weekly" {
		t.Fatalf("ChannelName = %q, want registry fallback", pending[0].ChannelName)
	}
	if pending[1].ChannelName != "Override Name" {
		t.Fatalf("ChannelName = %q, want listing value", pending[1].ChannelName)
	}

	// A second poll of the same listing must not duplicate.
	if err := h.manager.PollChannels(ctx); err != nil {
		t.Fatalf("PollChannels again: %v", err)
	}
	pending, _ = h.store.VideosByStatus(ctx, queue.StatusPending)
	if len(pending) != 2 {
		t.Fatalf("poll not idempotent: %d pending", len(pending))
	}
}

func TestProcessNextRunsFullPipeline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	writeChannels(t, h.cfg.Channels.ConfigPath, `
channels:
  - id: UCabc
    name: Tech Weekly
    creator_context: Consumer tech news.
`)

	transcriptPath := filepath.Join(t.TempDir(), "vid1.txt")
	if err := os.WriteFile(transcriptPath, []byte("spoken words"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	h.fetcher.transcript = ytdlp.Transcript{Path: transcriptPath, Text: "spoken words"}
	h.engine.result = summarize.Result{
		FinalSummary:      "A tight summary.",
		Method:            summarize.MethodMultiModel,
		PrimaryModel:      "model-a",
		SecondaryModel:    "model-b",
		SynthesisModel:    "model-c",
		ProcessingSeconds: 1.25,
		CostEstimate:      0.0042,
	}

	if _, err := h.store.NewVideo(ctx, &queue.Video{
		VideoID:     "vid1",
		ChannelID:   "UCabc",
		ChannelName: "Tech Weekly",
		Title:       "First",
		URL:         "https://youtu.be/vid1",
		Status:      queue.StatusPending,
	}); err != nil {
		t.Fatalf("NewVideo: %v", err)
	}

	// fetch, summarize, notify
	for i := 0; i < 3; i++ {
		worked, err := h.manager.ProcessNext(ctx)
		if err != nil {
			t.Fatalf("ProcessNext #%d: %v", i+1, err)
		}
		if !worked {
			t.Fatalf("ProcessNext #%d did no work", i+1)
		}
	}

	video, err := h.store.FindByVideoID(ctx, "vid1")
	if err != nil || video == nil {
		t.Fatalf("FindByVideoID: %v %v", video, err)
	}
	if video.Status != queue.StatusCompleted {
		t.Fatalf("Status = %q, want completed", video.Status)
	}
	if video.FinalSummary != "A tight summary." || video.SummaryMethod != "multi_model" {
		t.Fatalf("result not persisted: %+v", video)
	}
	if video.CostEstimate != 0.0042 || video.ProcessingSeconds != 1.25 {
		t.Fatalf("metrics not persisted: %+v", video)
	}
	if video.NotifiedAt == nil {
		t.Fatal("NotifiedAt not set")
	}

	if h.engine.gotContent != "spoken words" {
		t.Fatalf("engine content = %q", h.engine.gotContent)
	}
	if h.engine.gotContext != "Consumer tech news." {
		t.Fatalf("engine creator context = %q", h.engine.gotContext)
	}

	if len(h.notifier.summaries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(h.notifier.summaries))
	}
	if h.notifier.summaries[0].VideoTitle != "First" {
		t.Fatalf("announcement = %+v", h.notifier.summaries[0])
	}

	worked, err := h.manager.ProcessNext(ctx)
	if err != nil || worked {
		t.Fatalf("expected idle queue, got worked=%v err=%v", worked, err)
	}
}

func TestProcessNextFailsVideoAndNotifies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.fetcher.downloadErr = errors.New("yt-dlp exploded")
	if _, err := h.store.NewVideo(ctx, &queue.Video{
		VideoID: "vid1",
		Title:   "Broken",
		Status:  queue.StatusPending,
	}); err != nil {
		t.Fatalf("NewVideo: %v", err)
	}

	worked, err := h.manager.ProcessNext(ctx)
	if err != nil || !worked {
		t.Fatalf("ProcessNext: worked=%v err=%v", worked, err)
	}

	video, _ := h.store.FindByVideoID(ctx, "vid1")
	if video.Status != queue.StatusFailed {
		t.Fatalf("Status = %q, want failed", video.Status)
	}
	if video.ErrorMessage == "" {
		t.Fatal("ErrorMessage empty")
	}
	if h.notifier.errorCalls != 1 {
		t.Fatalf("errorCalls = %d, want 1", h.notifier.errorCalls)
	}
}

func TestNotifyFailureKeepsSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.notifier.summaryErr = errors.New("telegram down")
	if _, err := h.store.NewVideo(ctx, &queue.Video{
		VideoID:      "vid1",
		Title:        "Summarized already",
		Status:       queue.StatusSummarized,
		FinalSummary: "kept summary",
	}); err != nil {
		t.Fatalf("NewVideo: %v", err)
	}

	if _, err := h.manager.ProcessNext(ctx); err != nil {
		t.Fatalf("ProcessNext: %v", err)
	}

	video, _ := h.store.FindByVideoID(ctx, "vid1")
	if video.Status != queue.StatusFailed {
		t.Fatalf("Status = %q, want failed", video.Status)
	}
	if video.FinalSummary != "kept summary" {
		t.Fatalf("summary lost: %q", video.FinalSummary)
	}
}
