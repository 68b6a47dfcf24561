package telegram

import (
	"strings"
	"testing"
)

func TestCleanForTransport(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips breaking characters", "a ~b~ {c} [d] e+f=g", "a b c d efg"},
		{"pipes become spaces", "col1|col2|col3", "col1 col2 col3"},
		{"rule becomes separator", "above\n-----\nbelow", "above\n———\nbelow"},
		{"double dash becomes em dash", "pause -- resume", "pause — resume"},
		{"blockquotes stripped", "> quoted line\n>> nested", "quoted line\nnested"},
		{"newlines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"punctuation collapsed", "wait... what?? no!!", "wait. what? no!"},
		{"surrounding space trimmed", "  text  ", "text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanForTransport(tc.in); got != tc.want {
				t.Fatalf("CleanForTransport(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanForTransportIdempotent(t *testing.T) {
	inputs := []string{
		"## Heading\n\n> quote\n\n| a | b |\n|---|---|\n\ntext... more!! done??\n\n\n\nend -- tail",
		"plain paragraph with nothing to clean",
		"~~~{[]}~~~",
		"",
	}
	for _, in := range inputs {
		once := CleanForTransport(in)
		twice := CleanForTransport(once)
		if once != twice {
			t.Fatalf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestCleanForTransportKeepsProse(t *testing.T) {
	in := "The creator explains the new workflow. It has three steps, each covered in detail."
	if got := CleanForTransport(in); got != in {
		t.Fatalf("prose altered: %q", got)
	}
	if strings.Contains(CleanForTransport("a - b"), "—") {
		t.Fatal("single dash must not become an em dash")
	}
}
