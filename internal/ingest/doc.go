// Package ingest watches a drop directory for manually supplied subtitle
// or transcript files and enqueues them for summarization, bypassing the
// channel polling and download stages.
package ingest
