package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for queue item identifiers.
	FieldItemID = "item_id"
	// FieldChannel is the standardized structured logging key for channel identifiers.
	FieldChannel = "channel"
	// FieldVideoID is the standardized structured logging key for video identifiers.
	FieldVideoID = "video_id"
	// FieldModel is the standardized structured logging key for model names.
	FieldModel = "model"
	// FieldRole is the standardized structured logging key for summarization roles.
	FieldRole = "role"
)

type contextKey int

const (
	itemIDKey contextKey = iota
	channelKey
	videoIDKey
)

// WithItemID annotates the context with a queue item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// WithChannel annotates the context with a channel identifier.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey, channel)
}

// WithVideoID annotates the context with a video identifier.
func WithVideoID(ctx context.Context, videoID string) context.Context {
	return context.WithValue(ctx, videoIDKey, videoID)
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if component == "" {
		return logger
	}
	return logger.With(FieldComponent, component)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(itemIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if channel, ok := ctx.Value(channelKey).(string); ok && channel != "" {
		fields = append(fields, slog.String(FieldChannel, channel))
	}
	if videoID, ok := ctx.Value(videoIDKey).(string); ok && videoID != "" {
		fields = append(fields, slog.String(FieldVideoID, videoID))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, attr := range fields {
		args = append(args, attr)
	}
	return logger.With(args...)
}
