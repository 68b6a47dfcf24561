package summarize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed templates/summary_prompt.txt
var defaultSummaryPrompt string

//go:embed templates/synthesis_prompt.txt
var defaultSynthesisPrompt string

const maxSynthesisExcerptChars = 30000

const excerptTruncationMarker = "\n[... transcript truncated ...]"

// SummaryTemplate renders the single-model summarization prompt.
type SummaryTemplate struct {
	text string
}

// LoadSummaryTemplate reads the prompt template from path, or falls back to
// the embedded default when path is empty. Templates are validated at load
// time so a bad override fails startup rather than a summarization run.
func LoadSummaryTemplate(path string) (*SummaryTemplate, error) {
	text, err := loadTemplateText(path, defaultSummaryPrompt)
	if err != nil {
		return nil, err
	}
	if err := checkPlaceholders(text, "content"); err != nil {
		return nil, fmt.Errorf("summary template: %w", err)
	}
	return &SummaryTemplate{text: text}, nil
}

// Format substitutes the transcript into the prompt.
func (t *SummaryTemplate) Format(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("summary template: empty content")
	}
	return fillTemplate(t.text, map[string]string{"content": content})
}

// SynthesisTemplate renders the merge prompt that combines two model
// summaries into a final one.
type SynthesisTemplate struct {
	text string
}

// LoadSynthesisTemplate reads the synthesis template from path, or the
// embedded default when path is empty.
func LoadSynthesisTemplate(path string) (*SynthesisTemplate, error) {
	text, err := loadTemplateText(path, defaultSynthesisPrompt)
	if err != nil {
		return nil, err
	}
	err = checkPlaceholders(text,
		"creator_context", "model_a", "summary_a", "model_b", "summary_b", "original_content")
	if err != nil {
		return nil, fmt.Errorf("synthesis template: %w", err)
	}
	return &SynthesisTemplate{text: text}, nil
}

// SynthesisInput carries the pieces the synthesis prompt combines.
type SynthesisInput struct {
	CreatorContext  string
	ModelA          string
	SummaryA        string
	ModelB          string
	SummaryB        string
	OriginalContent string
}

// Format renders the synthesis prompt. The original transcript is capped at
// maxSynthesisExcerptChars; it serves only as a conflict-resolution reference
// so losing the tail is acceptable.
func (t *SynthesisTemplate) Format(input SynthesisInput) (string, error) {
	if strings.TrimSpace(input.CreatorContext) == "" {
		return "", fmt.Errorf("synthesis template: empty creator context")
	}
	if strings.TrimSpace(input.SummaryA) == "" || strings.TrimSpace(input.SummaryB) == "" {
		return "", fmt.Errorf("synthesis template: empty input summary")
	}
	if strings.TrimSpace(input.OriginalContent) == "" {
		return "", fmt.Errorf("synthesis template: empty original content")
	}

	excerpt := input.OriginalContent
	if len(excerpt) > maxSynthesisExcerptChars {
		excerpt = truncateChars(excerpt, maxSynthesisExcerptChars) + excerptTruncationMarker
	}

	return fillTemplate(t.text, map[string]string{
		"creator_context":  input.CreatorContext,
		"model_a":          input.ModelA,
		"summary_a":        input.SummaryA,
		"model_b":          input.ModelB,
		"summary_b":        input.SummaryB,
		"original_content": excerpt,
	})
}

func loadTemplateText(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("template %s is empty", path)
	}
	return string(data), nil
}

// checkPlaceholders verifies the template references every required
// placeholder and nothing else.
func checkPlaceholders(text string, required ...string) error {
	found := map[string]bool{}
	for _, name := range scanPlaceholders(text) {
		allowed := false
		for _, want := range required {
			if name == want {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("unknown placeholder {%s}", name)
		}
		found[name] = true
	}
	for _, want := range required {
		if !found[want] {
			return fmt.Errorf("missing placeholder {%s}", want)
		}
	}
	return nil
}

// fillTemplate substitutes {name} placeholders with their values. Braced
// regions that do not look like placeholders (spaces, newlines, JSON in the
// transcript text) pass through untouched.
func fillTemplate(text string, values map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			out.WriteString(text[i:])
			break
		}
		open += i
		out.WriteString(text[i:open])

		name, end, ok := parsePlaceholder(text, open)
		if !ok {
			out.WriteByte('{')
			i = open + 1
			continue
		}
		value, known := values[name]
		if !known {
			return "", fmt.Errorf("template references unknown placeholder {%s}", name)
		}
		out.WriteString(value)
		i = end
	}
	return out.String(), nil
}

func scanPlaceholders(text string) []string {
	var names []string
	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			break
		}
		open += i
		name, end, ok := parsePlaceholder(text, open)
		if !ok {
			i = open + 1
			continue
		}
		names = append(names, name)
		i = end
	}
	return names
}

// parsePlaceholder reads a {name} token starting at the brace. Names are
// lowercase identifiers with underscores; anything else is literal text.
func parsePlaceholder(text string, open int) (name string, end int, ok bool) {
	close := strings.IndexByte(text[open:], '}')
	if close < 0 {
		return "", 0, false
	}
	close += open
	name = text[open+1 : close]
	if name == "" {
		return "", 0, false
	}
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r == '_' {
			continue
		}
		return "", 0, false
	}
	return name, close + 1, true
}
