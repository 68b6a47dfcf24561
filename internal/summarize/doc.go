// Package summarize implements the multi-model summarization pipeline. Two
// models summarize a transcript independently, a third merges their output,
// and a cost gate plus layered fallbacks keep runs cheap and non-fatal: the
// orchestrator always produces a deliverable summary, degrading to a single
// model or a placeholder instead of returning errors.
package summarize
