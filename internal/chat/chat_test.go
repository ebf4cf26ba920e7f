package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/assistant"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/testutil"
)

type fakeRemote struct {
	mu      sync.Mutex
	fail    bool
	log     map[string][]models.ChatMessage
	written int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{log: make(map[string][]models.ChatMessage)}
}

func (f *fakeRemote) SendMessage(_ context.Context, projectID, role, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("remote down")
	}
	f.written++
	id := role + "-" + content
	f.log[projectID] = append(f.log[projectID], models.ChatMessage{ID: id, ProjectID: projectID, Role: role, Content: content})
	return id, nil
}

func (f *fakeRemote) GetChatHistory(_ context.Context, projectID string) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if projectID == "forbidden" {
		return nil, apperr.ErrNotFound
	}
	return append([]models.ChatMessage{}, f.log[projectID]...), nil
}

type stubReplier struct {
	reply string
	delay time.Duration
}

func (s stubReplier) Reply(string) string   { return s.reply }
func (s stubReplier) Delay() time.Duration { return s.delay }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reply never arrived")
	}
}

func TestSendAppendsUserThenAssistant(t *testing.T) {
	remote := newFakeRemote()
	tr := NewTranscript("p1", remote, stubReplier{reply: "canned", delay: 50 * time.Millisecond}, quiet())

	done, err := tr.Send(context.Background(), "  Build me a portfolio  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("len after send = %d, want 1", tr.Len())
	}
	if !tr.Typing() {
		t.Error("expected typing while reply pending")
	}
	first := tr.Messages()[0]
	if first.Role != models.RoleUser || first.Content != "Build me a portfolio" {
		t.Errorf("user message = %+v", first)
	}

	wait(t, done)
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len after reply = %d, want 2", len(msgs))
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "canned" {
		t.Errorf("reply = %+v", msgs[1])
	}
	if tr.Typing() {
		t.Error("typing should clear after reply")
	}
}

func TestRemoteFailureKeepsEcho(t *testing.T) {
	remote := newFakeRemote()
	remote.fail = true
	tr := NewTranscript("p1", remote, stubReplier{reply: "ok"}, quiet())

	done, err := tr.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("remote failure surfaced: %v", err)
	}
	wait(t, done)
	if tr.Len() != 2 {
		t.Errorf("len = %d, want 2", tr.Len())
	}
}

func TestSendRejectsBlankAndBusy(t *testing.T) {
	tr := NewTranscript("p1", newFakeRemote(), stubReplier{delay: time.Hour}, quiet())
	defer tr.Close()

	if _, err := tr.Send(context.Background(), "   "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank: %v", err)
	}
	if _, err := tr.Send(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Send(context.Background(), "two"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("send while typing: %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d", tr.Len())
	}
}

func TestSeedOnlyReplacesWithNonEmptyLog(t *testing.T) {
	tr := NewTranscript("p1", newFakeRemote(), stubReplier{}, quiet())
	tr.Seed([]models.ChatMessage{{ID: "a"}, {ID: "b"}})
	if tr.Len() != 2 {
		t.Fatalf("len = %d", tr.Len())
	}
	tr.Seed(nil)
	if tr.Len() != 2 {
		t.Errorf("empty seed cleared transcript")
	}
	tr.Seed([]models.ChatMessage{{ID: "c"}})
	if got := tr.Messages(); len(got) != 1 || got[0].ID != "c" {
		t.Errorf("messages = %+v", got)
	}
}

func TestOrderIsAppendOrder(t *testing.T) {
	tr := NewTranscript("p1", newFakeRemote(), stubReplier{reply: "r"}, quiet())
	later := time.Now().Add(time.Hour)
	tr.Seed([]models.ChatMessage{{ID: "future", Timestamp: later}})

	done, _ := tr.Send(context.Background(), "now")
	wait(t, done)
	msgs := tr.Messages()
	if msgs[0].ID != "future" || msgs[1].Content != "now" || msgs[2].Content != "r" {
		t.Errorf("order = %+v", msgs)
	}
}

func TestCloseCancelsPendingReply(t *testing.T) {
	tr := NewTranscript("p1", newFakeRemote(), stubReplier{delay: time.Hour}, quiet())
	done, _ := tr.Send(context.Background(), "hi")
	tr.Close()
	wait(t, done)
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestManagerSeedsFromRemoteLog(t *testing.T) {
	remote := newFakeRemote()
	_, _ = remote.SendMessage(context.Background(), "p1", models.RoleUser, "earlier")

	var mu sync.Mutex
	var seen []string
	m := NewManager(remote, map[assistant.Surface]Replier{
		assistant.SurfaceChat:   stubReplier{reply: "chat"},
		assistant.SurfaceEditor: stubReplier{reply: "editor"},
	}, quiet(), func(owner string, msg models.ChatMessage) {
		mu.Lock()
		seen = append(seen, owner+":"+msg.Content)
		mu.Unlock()
	})
	defer m.Close()
	ctx := testutil.As("alice")

	tr, err := m.Open(ctx, "p1")
	if err != nil || tr.Len() != 1 {
		t.Fatalf("Open = %v, len %d", err, tr.Len())
	}
	again, _ := m.Open(ctx, "p1")
	if again != tr {
		t.Error("Open should reuse the transcript")
	}

	_, done, err := m.Send(ctx, "p1", assistant.SurfaceEditor, "make it blue")
	if err != nil {
		t.Fatal(err)
	}
	wait(t, done)
	msgs := tr.Messages()
	if msgs[len(msgs)-1].Content != "editor" {
		t.Errorf("editor surface reply = %q", msgs[len(msgs)-1].Content)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "alice:make it blue" {
		t.Errorf("append events = %v", seen)
	}
}

func TestManagerReseedsOnSelection(t *testing.T) {
	remote := newFakeRemote()
	m := NewManager(remote, map[assistant.Surface]Replier{assistant.SurfaceChat: stubReplier{reply: "ok", delay: time.Hour}}, quiet(), nil)
	defer m.Close()
	ctx := testutil.As("alice")

	tr, err := m.Open(ctx, "p1")
	if err != nil || tr.Len() != 0 {
		t.Fatalf("Open = %v, len %d", err, tr.Len())
	}

	// Written by another session.
	_, _ = remote.SendMessage(context.Background(), "p1", models.RoleUser, "from elsewhere")
	_, _ = remote.SendMessage(context.Background(), "p1", models.RoleAssistant, "noted")

	again, err := m.Open(ctx, "p1")
	if err != nil || again != tr {
		t.Fatalf("Open = %v, reused %t", err, again == tr)
	}
	if msgs := tr.Messages(); len(msgs) != 2 || msgs[0].Content != "from elsewhere" {
		t.Fatalf("after reselect = %+v", msgs)
	}

	if _, _, err := m.Send(ctx, "p1", assistant.SurfaceChat, "mine"); err != nil {
		t.Fatal(err)
	}
	_, _ = remote.SendMessage(context.Background(), "p1", models.RoleUser, "late")

	// A pending reply keeps the local transcript as is.
	if _, err := m.Open(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	msgs := tr.Messages()
	if len(msgs) != 3 || msgs[2].Content != "mine" {
		t.Errorf("while typing = %+v", msgs)
	}
}

func TestManagerScopesByCaller(t *testing.T) {
	m := NewManager(newFakeRemote(), map[assistant.Surface]Replier{assistant.SurfaceChat: stubReplier{}}, quiet(), nil)
	defer m.Close()
	a, _ := m.Open(testutil.As("alice"), "p1")
	b, _ := m.Open(testutil.As("bob"), "p1")
	if a == b {
		t.Error("callers share a transcript")
	}
	if _, err := m.Open(context.Background(), "p1"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("anonymous Open: %v", err)
	}
	if _, err := m.Open(testutil.As("alice"), "forbidden"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("remote error not surfaced: %v", err)
	}
}

func TestManagerForget(t *testing.T) {
	m := NewManager(newFakeRemote(), map[assistant.Surface]Replier{assistant.SurfaceChat: stubReplier{delay: time.Hour}}, quiet(), nil)
	ctx := testutil.As("alice")
	_, done, _ := m.Send(ctx, "p1", assistant.SurfaceChat, "hi")
	m.Forget(ctx, "p1")
	wait(t, done)

	tr, _ := m.Open(ctx, "p1")
	if tr.Len() != 1 {
		t.Errorf("reopened transcript len = %d, want the persisted user message", tr.Len())
	}
}
