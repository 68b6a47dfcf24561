package telegram

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold and code", "**Hello** `world`", "<b>Hello</b> <code>world</code>"},
		{"escapes outside tags", "a < b & **c > d**", "a &lt; b &amp; <b>c &gt; d</b>"},
		{"escapes inside code", "`a < b`", "<code>a &lt; b</code>"},
		{"unmatched bold literal", "**open only", "**open only"},
		{"unmatched backtick literal", "tick ` only", "tick ` only"},
		{"plain text untouched", "plain text", "plain text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkdownToHTML(tc.in); got != tc.want {
				t.Fatalf("MarkdownToHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEscapeHTMLOrder(t *testing.T) {
	if got := EscapeHTML("&lt;"); got != "&amp;lt;" {
		t.Fatalf("EscapeHTML(\"&lt;\") = %q, ampersand must be escaped first", got)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	in := "a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s"
	got := EscapeMarkdownV2(in)
	for _, r := range markdownV2Reserved {
		if strings.ContainsRune(got, r) && !strings.Contains(got, "\\"+string(r)) {
			t.Fatalf("reserved %q not escaped in %q", r, got)
		}
	}
	if got := EscapeMarkdownV2("plain words"); got != "plain words" {
		t.Fatalf("EscapeMarkdownV2 altered plain text: %q", got)
	}
	if got := EscapeMarkdownV2("a.b"); got != "a\\.b" {
		t.Fatalf("EscapeMarkdownV2(\"a.b\") = %q", got)
	}
}

func TestStripMarkup(t *testing.T) {
	if got := StripMarkup("**bold** and `code`"); got != "bold and code" {
		t.Fatalf("StripMarkup = %q", got)
	}
}
