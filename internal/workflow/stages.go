package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/telegram"
)

type stage struct {
	name string
	from queue.Status
	to   queue.Status
	run  func(ctx context.Context, video *queue.Video) error
}

func (m *Manager) stages() []stage {
	// Later stages first so claimed work is pushed to completion before new
	// work is admitted.
	return []stage{
		{name: "notify", from: queue.StatusSummarized, to: queue.StatusNotifying, run: m.notifyStage},
		{name: "summarize", from: queue.StatusFetched, to: queue.StatusSummarizing, run: m.summarizeStage},
		{name: "fetch", from: queue.StatusPending, to: queue.StatusFetching, run: m.fetchStage},
	}
}

// ProcessNext claims and runs at most one stage transition. It reports
// whether any work was performed.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	for _, st := range m.stages() {
		video, err := m.store.NextForStatus(ctx, st.from, st.to)
		if err != nil {
			return false, fmt.Errorf("claim %s work: %w", st.name, err)
		}
		if video == nil {
			continue
		}

		logger := m.logger.With(
			logging.FieldItemID, video.ID,
			logging.FieldVideoID, video.VideoID,
			"stage", st.name,
		)
		logger.Info("stage started")

		if err := st.run(ctx, video); err != nil {
			if ctx.Err() != nil {
				// Shutdown mid-stage: leave the item in-flight so the next
				// start rolls it back instead of recording a spurious failure.
				return true, context.Canceled
			}
			m.failVideo(ctx, logger, video, st.name, err)
			return true, nil
		}

		logger.Info("stage finished", "status", video.Status)
		return true, nil
	}
	return false, nil
}

func (m *Manager) failVideo(ctx context.Context, logger *slog.Logger, video *queue.Video, stageName string, cause error) {
	video.SetFailed(fmt.Sprintf("%s: %v", stageName, cause))
	if err := m.store.Update(ctx, video); err != nil {
		logger.Error("could not persist failure", "error", err)
	}
	logger.Error("stage failed", "error", cause)
	m.setLastError(cause)

	if m.cfg.Telegram.Errors {
		label := video.Title
		if label == "" {
			label = video.VideoID
		}
		if err := m.notifier.NotifyError(ctx, cause, label); err != nil {
			logger.Error("error notification failed", "error", err)
		}
	}
}

// fetchStage downloads the transcript for a claimed video. A video without
// captions still advances; the summarizer reports the absence downstream.
func (m *Manager) fetchStage(ctx context.Context, video *queue.Video) error {
	transcript, err := m.fetcher.DownloadTranscript(ctx, video.VideoID, video.URL)
	if err != nil {
		return err
	}
	video.TranscriptPath = transcript.Path
	video.TranscriptChars = len(transcript.Text)
	video.Status = queue.StatusFetched
	return m.store.Update(ctx, video)
}

// summarizeStage runs the orchestrator over the cached transcript and
// persists the full result envelope.
func (m *Manager) summarizeStage(ctx context.Context, video *queue.Video) error {
	var content string
	if video.TranscriptPath != "" {
		raw, err := os.ReadFile(video.TranscriptPath)
		if err != nil {
			m.logger.Warn("cached transcript unreadable, summarizing without content",
				logging.FieldItemID, video.ID, "error", err)
		} else {
			content = string(raw)
		}
	}

	ctx = logging.WithItemID(ctx, video.ID)
	ctx = logging.WithVideoID(ctx, video.VideoID)
	result := m.engine.Summarize(ctx, content, m.creatorContext(video.ChannelID))

	video.FinalSummary = result.FinalSummary
	video.SummaryMethod = string(result.Method)
	video.PrimaryModel = result.PrimaryModel
	video.SecondaryModel = result.SecondaryModel
	video.SynthesisModel = result.SynthesisModel
	video.FallbackUsed = result.FallbackUsed
	video.FallbackStrategy = string(result.FallbackStrategy)
	video.ProcessingSeconds = result.ProcessingSeconds
	video.CostEstimate = result.CostEstimate

	if encoded, err := result.TokenUsage.EncodeJSON(); err != nil {
		m.logger.Warn("could not encode token usage", logging.FieldItemID, video.ID, "error", err)
	} else {
		video.TokenUsageJSON = encoded
	}

	video.Status = queue.StatusSummarized
	return m.store.Update(ctx, video)
}

// notifyStage delivers the stored summary. Delivery failures mark the video
// failed while keeping the summary, so a retry only repeats delivery.
func (m *Manager) notifyStage(ctx context.Context, video *queue.Video) error {
	err := m.notifier.NotifySummary(ctx, telegram.Announcement{
		ChannelName: video.ChannelName,
		VideoTitle:  video.Title,
		VideoURL:    video.URL,
		Summary:     video.FinalSummary,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	video.NotifiedAt = &now
	video.Status = queue.StatusCompleted
	return m.store.Update(ctx, video)
}
