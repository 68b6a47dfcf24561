// Package llm defines the chat-completion provider interface and the
// OpenRouter-compatible HTTP implementation used for summarization calls.
// Providers perform exactly one round trip per Complete call; bounded
// retries live in internal/retry so every call boundary shares the same
// backoff behavior.
package llm
