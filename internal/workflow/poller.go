package workflow

import (
	"context"
	"fmt"

	"recap/internal/channels"
	"recap/internal/logging"
	"recap/internal/queue"
)

// PollChannels reloads the channel registry and enqueues any uploads not yet
// tracked. The registry is re-read every cycle so edits take effect without a
// restart.
func (m *Manager) PollChannels(ctx context.Context) error {
	registry, err := channels.Load(m.cfg.Channels.ConfigPath)
	if err != nil {
		return fmt.Errorf("load channel registry: %w", err)
	}
	m.mu.Lock()
	m.registry = registry
	m.mu.Unlock()

	enabled := registry.Enabled()
	if len(enabled) == 0 {
		return nil
	}
	limit := m.cfg.Channels.MaxVideosPerPoll

	var firstErr error
	for _, channel := range enabled {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		added, err := m.pollChannel(ctx, channel, limit)
		if err != nil {
			m.logger.Error("channel poll failed",
				logging.FieldChannel, channel.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if added > 0 {
			m.logger.Info("new uploads queued",
				logging.FieldChannel, channel.ID, "count", added)
		}
	}
	return firstErr
}

func (m *Manager) pollChannel(ctx context.Context, channel channels.Channel, limit int) (int, error) {
	videos, err := m.fetcher.ListRecent(ctx, channel.SourceURL(), limit)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, info := range videos {
		existing, err := m.store.FindByVideoID(ctx, info.ID)
		if err != nil {
			return added, fmt.Errorf("check video %s: %w", info.ID, err)
		}
		if existing != nil {
			continue
		}

		channelName := info.ChannelName
		if channelName == "" {
			channelName = channel.DisplayName()
		}
		_, err = m.store.NewVideo(ctx, &queue.Video{
			VideoID:     info.ID,
			ChannelID:   channel.ID,
			ChannelName: channelName,
			Title:       info.Title,
			URL:         info.URL,
			PublishedAt: info.PublishedAt,
			Status:      queue.StatusPending,
		})
		if err != nil {
			return added, fmt.Errorf("enqueue video %s: %w", info.ID, err)
		}
		added++
	}
	return added, nil
}

// creatorContext returns the configured creator context for a channel, or
// empty when the channel is unknown (manual drops included).
func (m *Manager) creatorContext(channelID string) string {
	m.mu.Lock()
	registry := m.registry
	m.mu.Unlock()

	if registry == nil {
		loaded, err := channels.Load(m.cfg.Channels.ConfigPath)
		if err != nil {
			m.logger.Warn("could not load channel registry", "error", err)
			return ""
		}
		m.mu.Lock()
		m.registry = loaded
		m.mu.Unlock()
		registry = loaded
	}

	if channel, ok := registry.Get(channelID); ok {
		return channel.CreatorContext
	}
	return ""
}
