package assistant

import (
	"slices"
	"testing"
	"time"
)

func TestReplyComesFromSet(t *testing.T) {
	r := New(ChatReplies, 0, 0)
	for range 50 {
		if got := r.Reply("anything"); !slices.Contains(ChatReplies, got) {
			t.Fatalf("reply %q not in set", got)
		}
	}
}

func TestReplyUsesRandomIndex(t *testing.T) {
	r := New(EditorReplies, 0, 0)
	r.intn = func(n int) int { return n - 1 }
	if got := r.Reply(""); got != EditorReplies[len(EditorReplies)-1] {
		t.Errorf("reply = %q", got)
	}
}

func TestDelayBounds(t *testing.T) {
	r := New(ChatReplies, 1200*time.Millisecond, 1800*time.Millisecond)
	for range 100 {
		d := r.Delay()
		if d < 1200*time.Millisecond || d > 1800*time.Millisecond {
			t.Fatalf("delay %v out of range", d)
		}
	}

	fixed := New(ChatReplies, time.Second, 0)
	if d := fixed.Delay(); d != time.Second {
		t.Errorf("inverted bounds delay = %v", d)
	}
}

func TestRepliesBySurface(t *testing.T) {
	if len(Replies(SurfaceChat)) != 5 {
		t.Errorf("chat set = %d", len(Replies(SurfaceChat)))
	}
	if len(Replies(SurfaceEditor)) != 8 {
		t.Errorf("editor set = %d", len(Replies(SurfaceEditor)))
	}
	if len(Replies("other")) != 5 {
		t.Error("unknown surface should use chat set")
	}
}

func TestEmptyReplySet(t *testing.T) {
	if got := New(nil, 0, 0).Reply("x"); got != "" {
		t.Errorf("reply = %q", got)
	}
}
