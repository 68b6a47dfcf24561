package telegram

import "strings"

// EscapeHTML escapes the three characters Telegram's HTML parse mode
// reserves. Ampersands go first so already-escaped entities are not
// produced and then mangled.
func EscapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// MarkdownToHTML converts the markdown subset the summarization models emit
// (**bold** and `code`) into Telegram HTML. The string is segmented on the
// markdown delimiters first and only the plain-text segments are escaped, so
// the tags introduced here survive untouched. Unmatched delimiters are kept
// as literal text.
func MarkdownToHTML(text string) string {
	segments := strings.Split(text, "`")
	if len(segments) == 1 {
		return boldToHTML(text)
	}
	var out strings.Builder
	out.Grow(len(text))
	for i, segment := range segments {
		if i%2 == 1 && i < len(segments)-1 {
			out.WriteString("<code>")
			out.WriteString(EscapeHTML(segment))
			out.WriteString("</code>")
			continue
		}
		if i%2 == 1 {
			// odd count of backticks, the last one is literal
			out.WriteString(boldToHTML("`" + segment))
			continue
		}
		out.WriteString(boldToHTML(segment))
	}
	return out.String()
}

func boldToHTML(text string) string {
	parts := strings.Split(text, "**")
	if len(parts) == 1 {
		return EscapeHTML(text)
	}
	var out strings.Builder
	out.Grow(len(text))
	for i, part := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			out.WriteString("<b>")
			out.WriteString(EscapeHTML(part))
			out.WriteString("</b>")
			continue
		}
		if i%2 == 1 {
			out.WriteString(EscapeHTML("**" + part))
			continue
		}
		out.WriteString(EscapeHTML(part))
	}
	return out.String()
}

const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 backslash-escapes every character Telegram's MarkdownV2
// parse mode reserves. Processing character by character means an already
// present backslash never causes double-escaping of what follows.
func EscapeMarkdownV2(text string) string {
	var out strings.Builder
	out.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if r < 128 && strings.ContainsRune(markdownV2Reserved, r) {
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// StripMarkup removes the markdown decorations for plain-text fallback
// delivery.
func StripMarkup(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "`", "")
	return text
}
