// Package ytdlp wraps the yt-dlp binary for channel enumeration and
// subtitle retrieval, and converts WebVTT/SRT caption files into plain
// transcripts suitable for summarization.
package ytdlp
