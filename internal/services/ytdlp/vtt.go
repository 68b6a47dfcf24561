package ytdlp

import (
	"html"
	"regexp"
	"strings"
)

var (
	inlineTagPattern  = regexp.MustCompile(`<[^>]*>`)
	cueIndexPattern   = regexp.MustCompile(`^\d+$`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// ParseSubtitles converts WebVTT or SRT subtitle content into plain prose.
// Cue timings, positioning, styling blocks, and inline tags are dropped.
// Auto-generated captions repeat the previous cue's text on a rolling basis;
// consecutive duplicate lines are collapsed so the transcript reads linearly.
func ParseSubtitles(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var lines []string
	inStyleBlock := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			inStyleBlock = false
			continue
		case strings.HasPrefix(line, "WEBVTT"):
			continue
		case strings.HasPrefix(line, "Kind:"), strings.HasPrefix(line, "Language:"):
			continue
		case strings.HasPrefix(line, "NOTE"), strings.HasPrefix(line, "STYLE"), strings.HasPrefix(line, "REGION"):
			inStyleBlock = true
			continue
		case inStyleBlock:
			continue
		case strings.Contains(line, "-->"):
			continue
		case cueIndexPattern.MatchString(line):
			continue
		}

		text := cleanCueLine(line)
		if text == "" {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1] == text {
			continue
		}
		lines = append(lines, text)
	}

	return strings.Join(dedupeRolling(lines), "\n")
}

// cleanCueLine strips inline markup and entities from a single cue line.
func cleanCueLine(line string) string {
	line = inlineTagPattern.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = whitespacePattern.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// dedupeRolling removes the overlap pattern of YouTube auto captions, where
// each cue shows the previous line plus the next one. A line is dropped when
// the following line starts with it, or when it repeats any of the last few
// emitted lines.
func dedupeRolling(lines []string) []string {
	const lookback = 2

	var out []string
	for i, line := range lines {
		if i+1 < len(lines) {
			next := lines[i+1]
			if len(next) > len(line) && strings.HasPrefix(next, line) {
				continue
			}
		}
		duplicate := false
		for j := len(out) - 1; j >= 0 && j >= len(out)-lookback; j-- {
			if out[j] == line {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		out = append(out, line)
	}
	return out
}
