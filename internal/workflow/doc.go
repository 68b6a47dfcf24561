// Package workflow coordinates the video pipeline: channel polling,
// transcript retrieval, summarization, and Telegram delivery. Each stage
// claims work atomically from the queue, so a crash never loses an item and
// interrupted stages roll back on the next start.
package workflow
