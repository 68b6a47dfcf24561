package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Announcement carries everything needed to announce one summarized video.
type Announcement struct {
	ChannelName string
	VideoTitle  string
	VideoURL    string
	Summary     string
}

// Service is the notification surface exposed to pipeline components.
type Service interface {
	NotifySummary(ctx context.Context, a Announcement) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a Telegram-backed notification service when a bot token
// and chat are configured; otherwise a noop implementation is returned so
// callers never branch on configuration.
func NewService(cfg Config, logger *slog.Logger) (Service, error) {
	if strings.TrimSpace(cfg.BotToken) == "" || strings.TrimSpace(cfg.ChatID) == "" {
		return noopService{}, nil
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	notifier := NewNotifier(client, logger)
	if cfg.MaxMessageLength > 0 {
		notifier.maxLength = cfg.MaxMessageLength
	}
	return notifier, nil
}

// Notifier formats announcements and delivers them through a dispatcher.
type Notifier struct {
	dispatcher *Dispatcher
	maxLength  int
}

// NewNotifier wires a notifier around sender.
func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		dispatcher: NewDispatcher(sender, logger),
		maxLength:  DefaultMaxLength,
	}
}

// NotifySummary cleans, splits, and delivers one video summary. Only the
// model-generated pieces pass through CleanForTransport: the video URL must
// arrive byte-for-byte intact, and cleaning would strip its query string.
func (n *Notifier) NotifySummary(ctx context.Context, a Announcement) error {
	var builder strings.Builder
	title := CleanForTransport(a.VideoTitle)
	if title == "" {
		title = "New video"
	}
	builder.WriteString("**")
	builder.WriteString(title)
	builder.WriteString("**\n")
	if channel := strings.TrimSpace(a.ChannelName); channel != "" {
		builder.WriteString(channel)
		builder.WriteString("\n")
	}
	if url := strings.TrimSpace(a.VideoURL); url != "" {
		builder.WriteString(url)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(CleanForTransport(a.Summary))

	message := strings.TrimSpace(builder.String())
	if message == "" {
		return fmt.Errorf("telegram: nothing to deliver")
	}
	parts := SplitForTransport(message, n.maxLength)
	return n.dispatcher.Deliver(ctx, parts, ParseModeHTML)
}

// NotifyError reports a pipeline failure to the operator chat.
func (n *Notifier) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	parts := SplitForTransport(CleanForTransport(builder.String()), n.maxLength)
	return n.dispatcher.Deliver(ctx, parts, ParseModePlain)
}

// TestNotification verifies the bot token and chat wiring.
func (n *Notifier) TestNotification(ctx context.Context) error {
	parts := []Part{{Index: 1, Total: 1, Text: "**Recap** notification test"}}
	return n.dispatcher.Deliver(ctx, parts, ParseModeHTML)
}

type noopService struct{}

func (noopService) NotifySummary(context.Context, Announcement) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error  { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
