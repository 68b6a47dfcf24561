package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Sender is the transport surface the dispatcher needs. *Client satisfies
// it; tests substitute fakes.
type Sender interface {
	SendMessage(ctx context.Context, text string, mode ParseMode) error
}

// perMessageRate paces deliveries to stay under Telegram's per-chat limit
// of roughly one message per second.
var perMessageRate = rate.Every(1100 * time.Millisecond)

// Dispatcher delivers multi-part messages with per-part fallback: each part
// is tried with the rich parse mode first, then once more as plain text.
// When both fail the remaining parts are not attempted, since delivering a
// gap-riddled sequence is worse than a clean stop.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDispatcher wires a dispatcher around sender.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(perMessageRate, 1),
		logger:  logger,
	}
}

// Deliver sends every part in order using mode, falling back to plain text
// per part. It returns nil only if every part was delivered.
func (d *Dispatcher) Deliver(ctx context.Context, parts []Part, mode ParseMode) error {
	for _, part := range parts {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := d.deliverPart(ctx, part, mode); err != nil {
			return fmt.Errorf("deliver part %d/%d: %w", part.Index, part.Total, err)
		}
	}
	return nil
}

func (d *Dispatcher) deliverPart(ctx context.Context, part Part, mode ParseMode) error {
	text := renderPart(part, mode)
	err := d.sender.SendMessage(ctx, text, mode)
	if err == nil {
		return nil
	}
	if mode == ParseModePlain {
		return err
	}

	d.logger.Warn("formatted delivery failed, retrying as plain text",
		slog.Int("part", part.Index),
		slog.Int("total", part.Total),
		slog.String("parse_mode", string(mode)),
		slog.Any("error", err),
	)
	if plainErr := d.sender.SendMessage(ctx, renderPart(part, ParseModePlain), ParseModePlain); plainErr != nil {
		return fmt.Errorf("plain-text fallback also failed: %w", plainErr)
	}
	return nil
}

// renderPart applies the mode's escaping to the part body and marker.
func renderPart(part Part, mode ParseMode) string {
	switch mode {
	case ParseModeHTML:
		body := MarkdownToHTML(part.Text)
		if part.Total <= 1 {
			return body
		}
		return "<b>" + EscapeHTML(part.Header()) + "</b>\n\n" + body
	case ParseModeMarkdownV2:
		body := EscapeMarkdownV2(StripMarkup(part.Text))
		if part.Total <= 1 {
			return body
		}
		return EscapeMarkdownV2(part.Header()) + "\n\n" + body
	default:
		return Part{Index: part.Index, Total: part.Total, Text: StripMarkup(part.Text)}.Render()
	}
}
