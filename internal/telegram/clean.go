package telegram

import (
	"regexp"
	"strings"
)

var (
	horizontalRulePattern = regexp.MustCompile(`-{3,}`)
	doubleDashPattern     = regexp.MustCompile(`--`)
	excessNewlinePattern  = regexp.MustCompile(`\n{3,}`)
	repeatedDotPattern    = regexp.MustCompile(`\.{2,}`)
	repeatedBangPattern   = regexp.MustCompile(`!{2,}`)
	repeatedQuestionMark  = regexp.MustCompile(`\?{2,}`)
)

// visualSeparator replaces markdown horizontal rules. Em-dashes are not in
// any reserved set this package strips or converts, which keeps the pass
// idempotent.
const visualSeparator = "———"

// CleanForTransport normalizes model-generated markdown into text that
// renders safely in Telegram messages: characters the parser chokes on are
// dropped, table pipes become spaces, rules become a decorative separator,
// blockquote markers are stripped, and runaway newlines and punctuation are
// collapsed. The pass is idempotent: cleaning cleaned text is a no-op.
func CleanForTransport(text string) string {
	// Characters that commonly break Telegram's markdown rendering.
	text = strings.Map(func(r rune) rune {
		switch r {
		case '~', '{', '}', '+', '=', '[', ']':
			return -1
		}
		return r
	}, text)

	text = strings.ReplaceAll(text, "|", " ")

	text = horizontalRulePattern.ReplaceAllString(text, visualSeparator)
	text = doubleDashPattern.ReplaceAllString(text, "—")

	text = stripBlockquotes(text)

	text = excessNewlinePattern.ReplaceAllString(text, "\n\n")
	text = repeatedDotPattern.ReplaceAllString(text, ".")
	text = repeatedBangPattern.ReplaceAllString(text, "!")
	text = repeatedQuestionMark.ReplaceAllString(text, "?")

	return strings.TrimSpace(text)
}

// stripBlockquotes removes leading quote markers from each line, including
// nested ones, so a second pass finds nothing left to strip.
func stripBlockquotes(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), ">") {
			lines[i] = strings.TrimLeft(line, " \t>")
		}
	}
	return strings.Join(lines, "\n")
}
