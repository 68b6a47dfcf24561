package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"recap/internal/channels"
	"recap/internal/config"
	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/services/ytdlp"
	"recap/internal/summarize"
	"recap/internal/telegram"
)

// Fetcher lists channel uploads and retrieves transcripts.
type Fetcher interface {
	ListRecent(ctx context.Context, channelURL string, limit int) ([]ytdlp.VideoInfo, error)
	DownloadTranscript(ctx context.Context, videoID, videoURL string) (ytdlp.Transcript, error)
}

// Engine produces a summary for one transcript. It never fails; degraded
// outcomes are encoded in the result itself.
type Engine interface {
	Summarize(ctx context.Context, content, creatorContext string) summarize.Result
}

// Manager drives the queue through its stages: discovery, transcript
// retrieval, summarization, and delivery.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	fetcher  Fetcher
	engine   Engine
	notifier telegram.Service
	logger   *slog.Logger

	pollInterval    time.Duration
	errorRetry      time.Duration
	channelInterval time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	registry *channels.Registry
}

// NewManager constructs a workflow manager. The notifier may be the noop
// service when Telegram is not configured.
func NewManager(cfg *config.Config, store *queue.Store, fetcher Fetcher, engine Engine, notifier telegram.Service, logger *slog.Logger) (*Manager, error) {
	if cfg == nil || store == nil || fetcher == nil || engine == nil || notifier == nil {
		return nil, errors.New("workflow: config, store, fetcher, engine, and notifier are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:             cfg,
		store:           store,
		fetcher:         fetcher,
		engine:          engine,
		notifier:        notifier,
		logger:          logging.WithComponent(logger, "workflow"),
		pollInterval:    time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetry:      time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		channelInterval: time.Duration(cfg.Channels.PollIntervalMinutes) * time.Minute,
	}, nil
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(2)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuck(runCtx); err != nil {
		m.logger.Warn("could not reset stuck items", "error", err)
	} else if reset > 0 {
		m.logger.Info("reset stuck items to their previous stage", "count", reset)
	}

	go m.runQueue(runCtx)
	go m.runChannelPolling(runCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight stages.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether background processing is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent stage or queue error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) runQueue(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		worked, err := m.ProcessNext(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			m.setLastError(err)
			m.logger.Error("queue processing error", "error", err)
			if !sleepCtx(ctx, m.errorRetry) {
				return
			}
		case !worked:
			if !sleepCtx(ctx, m.pollInterval) {
				return
			}
		}
	}
}

func (m *Manager) runChannelPolling(ctx context.Context) {
	defer m.wg.Done()
	for {
		if err := m.PollChannels(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.setLastError(err)
			m.logger.Error("channel polling failed", "error", err)
		}
		if !sleepCtx(ctx, m.channelInterval) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
