package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"recap/internal/logging"
	"recap/internal/textutil"
)

// DefaultBinary is the yt-dlp executable resolved from PATH.
const DefaultBinary = "yt-dlp"

const defaultTimeout = 5 * time.Minute

// VideoInfo describes one playlist entry returned by a channel listing.
type VideoInfo struct {
	ID          string
	Title       string
	URL         string
	ChannelID   string
	ChannelName string
	PublishedAt time.Time
}

// Transcript is the result of a subtitle download.
type Transcript struct {
	// Path is the cached plain-text transcript file.
	Path string
	// Text is the extracted transcript content.
	Text string
	// Language is the subtitle language that was actually downloaded.
	Language string
}

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Config holds yt-dlp invocation settings.
type Config struct {
	BinaryPath    string
	Timeout       time.Duration
	SubtitleLangs []string
	CacheDir      string
}

// Client wraps the yt-dlp binary for channel listing and subtitle retrieval.
type Client struct {
	binary   string
	timeout  time.Duration
	langs    []string
	cacheDir string
	logger   *slog.Logger
	runner   CommandRunner
}

// NewClient creates a yt-dlp client. The cache directory is created lazily on
// first download.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	binary := strings.TrimSpace(cfg.BinaryPath)
	if binary == "" {
		binary = DefaultBinary
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	langs := cfg.SubtitleLangs
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Client{
		binary:   binary,
		timeout:  timeout,
		langs:    langs,
		cacheDir: cfg.CacheDir,
		logger:   logging.WithComponent(logger, "ytdlp"),
	}
}

// WithRunner sets a custom command runner (for testing).
func (c *Client) WithRunner(runner CommandRunner) {
	c.runner = runner
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.runner != nil {
		return c.runner(ctx, c.binary, args...)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("%s: %w: %s", c.binary, err, detail)
	}
	return stdout.Bytes(), nil
}

// playlistEntry mirrors the fields we use from yt-dlp's flat-playlist JSON.
type playlistEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
	ChannelID  string `json:"channel_id"`
	Channel    string `json:"channel"`
	Uploader   string `json:"uploader"`
	Timestamp  int64  `json:"timestamp"`
	UploadDate string `json:"upload_date"`
	LiveStatus string `json:"live_status"`
}

// ListRecent enumerates the newest uploads of a channel without downloading
// any media. Live and upcoming entries are skipped.
func (c *Client) ListRecent(ctx context.Context, channelURL string, limit int) ([]VideoInfo, error) {
	if strings.TrimSpace(channelURL) == "" {
		return nil, fmt.Errorf("ytdlp: channel url required")
	}
	if limit <= 0 {
		limit = 5
	}

	args := []string{
		"--flat-playlist",
		"--dump-json",
		"--playlist-end", fmt.Sprintf("%d", limit),
		"--no-warnings",
		channelURL,
	}
	output, err := c.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("ytdlp: list %s: %w", channelURL, err)
	}

	var videos []VideoInfo
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry playlistEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			c.logger.Warn("skipping unparseable playlist entry", "error", err)
			continue
		}
		if entry.ID == "" {
			continue
		}
		if entry.LiveStatus == "is_live" || entry.LiveStatus == "is_upcoming" {
			continue
		}
		videos = append(videos, entry.toVideoInfo())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ytdlp: scan listing: %w", err)
	}
	return videos, nil
}

func (e playlistEntry) toVideoInfo() VideoInfo {
	url := e.WebpageURL
	if url == "" {
		url = e.URL
	}
	if url == "" {
		url = "https://www.youtube.com/watch?v=" + e.ID
	}
	name := e.Channel
	if name == "" {
		name = e.Uploader
	}
	var published time.Time
	switch {
	case e.Timestamp > 0:
		published = time.Unix(e.Timestamp, 0).UTC()
	case e.UploadDate != "":
		if parsed, err := time.Parse("20060102", e.UploadDate); err == nil {
			published = parsed
		}
	}
	return VideoInfo{
		ID:          e.ID,
		Title:       e.Title,
		URL:         url,
		ChannelID:   e.ChannelID,
		ChannelName: name,
		PublishedAt: published,
	}
}

// DownloadTranscript fetches subtitles for a video and converts them to plain
// text in the cache directory. Manual subtitles are preferred; auto-generated
// captions are accepted as a fallback. The returned transcript text is empty
// when the video has no captions in any configured language.
func (c *Client) DownloadTranscript(ctx context.Context, videoID, videoURL string) (Transcript, error) {
	var transcript Transcript
	if strings.TrimSpace(videoID) == "" {
		return transcript, fmt.Errorf("ytdlp: video id required")
	}
	if strings.TrimSpace(videoURL) == "" {
		videoURL = "https://www.youtube.com/watch?v=" + videoID
	}
	if c.cacheDir == "" {
		return transcript, fmt.Errorf("ytdlp: transcript cache directory not configured")
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return transcript, fmt.Errorf("ytdlp: ensure cache dir: %w", err)
	}

	// Video IDs are case-sensitive, so the cache key must preserve case.
	token := textutil.SanitizeFileName(videoID)
	if token == "" {
		return transcript, fmt.Errorf("ytdlp: video id %q unusable as cache key", videoID)
	}
	textPath := filepath.Join(c.cacheDir, token+".txt")
	if cached, err := os.ReadFile(textPath); err == nil && len(cached) > 0 {
		transcript.Path = textPath
		transcript.Text = string(cached)
		return transcript, nil
	}

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(c.langs, ","),
		"--sub-format", "vtt/srt/best",
		"--no-warnings",
		"-o", filepath.Join(c.cacheDir, token+".%(ext)s"),
		videoURL,
	}
	if _, err := c.run(ctx, args...); err != nil {
		return transcript, fmt.Errorf("ytdlp: download subtitles for %s: %w", videoID, err)
	}

	subPath, lang := c.findSubtitleFile(token)
	if subPath == "" {
		c.logger.Info("no captions available", "video_id", videoID)
		return transcript, nil
	}
	defer os.Remove(subPath)

	raw, err := os.ReadFile(subPath)
	if err != nil {
		return transcript, fmt.Errorf("ytdlp: read subtitle file: %w", err)
	}
	text := ParseSubtitles(string(raw))
	if text == "" {
		return transcript, nil
	}
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return transcript, fmt.Errorf("ytdlp: cache transcript: %w", err)
	}

	transcript.Path = textPath
	transcript.Text = text
	transcript.Language = lang
	return transcript, nil
}

// findSubtitleFile locates the downloaded subtitle for a video, honoring the
// configured language preference order.
func (c *Client) findSubtitleFile(token string) (string, string) {
	for _, lang := range c.langs {
		for _, ext := range []string{"vtt", "srt"} {
			path := filepath.Join(c.cacheDir, fmt.Sprintf("%s.%s.%s", token, lang, ext))
			if _, err := os.Stat(path); err == nil {
				return path, lang
			}
		}
	}
	// yt-dlp may pick a close language variant such as en-US.
	matches, _ := filepath.Glob(filepath.Join(c.cacheDir, token+".*.vtt"))
	if len(matches) == 0 {
		matches, _ = filepath.Glob(filepath.Join(c.cacheDir, token+".*.srt"))
	}
	if len(matches) == 0 {
		return "", ""
	}
	base := filepath.Base(matches[0])
	parts := strings.Split(base, ".")
	lang := ""
	if len(parts) >= 3 {
		lang = parts[len(parts)-2]
	}
	return matches[0], lang
}
