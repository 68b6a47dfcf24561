package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength leaves margin under Telegram's 4096-character message
// limit for the part marker and formatting overhead.
const DefaultMaxLength = 3800

// minimum share of a chunk a boundary split must retain; shorter candidates
// lose to a hard cut so the first part is never degenerately small.
const minSplitRetention = 0.6

// Part is one ordered fragment of an over-length message.
type Part struct {
	Index int
	Total int
	Text  string
}

// Header returns the human-readable part marker.
func (p Part) Header() string {
	return fmt.Sprintf("Part %d/%d", p.Index, p.Total)
}

// Render produces the deliverable text. Single-part messages carry no
// marker.
func (p Part) Render() string {
	if p.Total <= 1 {
		return p.Text
	}
	return p.Header() + "\n\n" + p.Text
}

// SplitForTransport breaks text into parts of at most maxLength characters.
// Split points prefer paragraph breaks, then sentence ends, then line
// breaks, then word boundaries; a candidate is only accepted if it keeps at
// least 60% of the chunk, otherwise the cut is hard. Concatenating the
// parts' text reconstructs the input up to whitespace trimmed at the
// boundaries.
//
// Part totals are filled in after all boundaries are known: boundary
// snapping makes the final count unknowable up front.
func SplitForTransport(text string, maxLength int) []Part {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if len(text) <= maxLength {
		return []Part{{Index: 1, Total: 1, Text: text}}
	}

	var texts []string
	remaining := text
	for len(remaining) > maxLength {
		cut := splitPoint(remaining[:maxLength])
		if cut <= 0 {
			cut = maxLength
		}
		texts = append(texts, strings.TrimSpace(remaining[:cut]))
		remaining = strings.TrimLeft(remaining[cut:], " \t\n")
	}
	if remaining != "" {
		texts = append(texts, strings.TrimSpace(remaining))
	}

	parts := make([]Part, len(texts))
	for i, t := range texts {
		parts[i] = Part{Index: i + 1, Total: len(texts), Text: t}
	}
	return parts
}

// splitPoint finds where to cut a full-length chunk, in falling priority:
// paragraph break, sentence end, line break, word boundary, hard cut.
func splitPoint(chunk string) int {
	minKeep := int(float64(len(chunk)) * minSplitRetention)

	if idx := strings.LastIndex(chunk, "\n\n"); idx >= minKeep {
		return idx
	}
	if idx := lastSentenceEnd(chunk); idx >= minKeep {
		return idx
	}
	if idx := strings.LastIndexByte(chunk, '\n'); idx >= minKeep {
		return idx
	}
	if idx := strings.LastIndexByte(chunk, ' '); idx >= minKeep {
		return idx
	}

	// Hard cut. If slicing at maxLength landed inside a multi-byte rune,
	// back off so the rune moves whole into the next part.
	cut := len(chunk)
	if r, size := utf8.DecodeLastRuneInString(chunk); r == utf8.RuneError && size <= 1 {
		for cut > 0 && !utf8.RuneStart(chunk[cut-1]) {
			cut--
		}
		if cut > 0 {
			cut--
		}
	}
	return cut
}

// lastSentenceEnd returns the position just after the last sentence-ending
// punctuation followed by a space, or -1.
func lastSentenceEnd(chunk string) int {
	for i := len(chunk) - 2; i >= 0; i-- {
		switch chunk[i] {
		case '.', '!', '?':
			if chunk[i+1] == ' ' {
				return i + 1
			}
		}
	}
	return -1
}
