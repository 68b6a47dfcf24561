// Package telegram delivers summaries to a Telegram chat. It formats
// model-generated markdown for Telegram's HTML and MarkdownV2 parse modes,
// normalizes text the renderer chokes on, splits over-length messages into
// ordered parts, and dispatches them through the Bot API with per-part
// plain-text fallback.
package telegram
