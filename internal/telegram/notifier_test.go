package telegram

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

func newTestNotifier(sender Sender) *Notifier {
	n := NewNotifier(sender, nil)
	n.dispatcher.limiter = rate.NewLimiter(rate.Inf, 1)
	return n
}

func TestNotifySummaryKeepsVideoURLIntact(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	err := n.NotifySummary(context.Background(), Announcement{
		ChannelName: "Quiet Gardener",
		VideoTitle:  "Raised beds [full build] part 2",
		VideoURL:    "https://www.youtube.com/watch?v=dQw4--w9WgXcQ",
		Summary:     "A {thorough} walkthrough of the build...",
	})
	if err != nil {
		t.Fatalf("NotifySummary: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	got := sender.sent[0].text
	if !strings.Contains(got, "https://www.youtube.com/watch?v=dQw4--w9WgXcQ") {
		t.Fatalf("video URL mangled in delivery:\n%s", got)
	}
	// Model-generated pieces still get normalized.
	if strings.Contains(got, "{thorough}") || strings.Contains(got, "...") {
		t.Fatalf("summary not cleaned:\n%s", got)
	}
	if strings.Contains(got, "[full build]") {
		t.Fatalf("title not cleaned:\n%s", got)
	}
}

func TestNotifySummaryDefaultsTitle(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	err := n.NotifySummary(context.Background(), Announcement{
		VideoURL: "https://www.youtube.com/watch?v=abc123",
		Summary:  "Short summary.",
	})
	if err != nil {
		t.Fatalf("NotifySummary: %v", err)
	}
	if !strings.Contains(sender.sent[0].text, "New video") {
		t.Fatalf("missing default title:\n%s", sender.sent[0].text)
	}
}
