// Package chat assembles the per-project transcript shown to the user:
// confirmed messages from the remote log plus locally echoed ones.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
)

// Remote persists chat messages.
type Remote interface {
	SendMessage(ctx context.Context, projectID, role, content string) (string, error)
}

// Replier produces the simulated assistant answer.
type Replier interface {
	Reply(prompt string) string
	Delay() time.Duration
}

// Transcript is the ordered message list of one project. Messages keep the
// order in which they were appended; nothing is re-sorted by timestamp.
type Transcript struct {
	projectID string
	remote    Remote
	replier   Replier
	log       *slog.Logger
	onAppend  func(models.ChatMessage)

	mu       sync.Mutex
	messages []models.ChatMessage
	typing   bool
	timer    *time.Timer
	pending  chan struct{}
	closed   bool
}

// NewTranscript creates an empty transcript for projectID.
func NewTranscript(projectID string, remote Remote, replier Replier, log *slog.Logger) *Transcript {
	if log == nil {
		log = slog.Default()
	}
	return &Transcript{projectID: projectID, remote: remote, replier: replier, log: log}
}

// OnAppend registers fn to be called after each local append.
func (t *Transcript) OnAppend(fn func(models.ChatMessage)) {
	t.mu.Lock()
	t.onAppend = fn
	t.mu.Unlock()
}

// ProjectID returns the project the transcript belongs to.
func (t *Transcript) ProjectID() string { return t.projectID }

// Seed replaces the transcript with the remote log. An empty remote log
// leaves local messages in place.
func (t *Transcript) Seed(remote []models.ChatMessage) {
	if len(remote) == 0 {
		return
	}
	t.mu.Lock()
	t.messages = append([]models.ChatMessage(nil), remote...)
	t.mu.Unlock()
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Typing reports whether an assistant reply is pending.
func (t *Transcript) Typing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing
}

func (t *Transcript) appendLocked(m models.ChatMessage) {
	t.messages = append(t.messages, m)
	if t.onAppend != nil {
		t.onAppend(m)
	}
}

// Send echoes content as a user message, persists it best-effort and
// schedules the assistant reply. The returned channel is closed once the
// reply has been appended (or the transcript closed).
func (t *Transcript) Send(ctx context.Context, content string) (<-chan struct{}, error) {
	return t.send(ctx, content, t.replier)
}

func (t *Transcript) send(ctx context.Context, content string, replier Replier) (<-chan struct{}, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid(errors.New("content: cannot be blank"))
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, apperr.ErrConflict
	}
	if t.typing {
		t.mu.Unlock()
		return nil, apperr.ErrConflict
	}
	t.appendLocked(models.ChatMessage{
		ID:        "temp-user-" + uuid.New().String(),
		ProjectID: t.projectID,
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})
	t.typing = true
	done := make(chan struct{})
	t.pending = done
	t.mu.Unlock()

	// Replies outlive the request that triggered them.
	bg := context.WithoutCancel(ctx)
	t.persist(bg, models.RoleUser, content)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return done, nil
	}
	t.timer = time.AfterFunc(replier.Delay(), func() { t.reply(bg, replier.Reply(content), done) })
	return done, nil
}

func (t *Transcript) reply(ctx context.Context, answer string, done chan struct{}) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.typing = false
	t.timer = nil
	t.pending = nil
	t.appendLocked(models.ChatMessage{
		ID:        "temp-ai-" + uuid.New().String(),
		ProjectID: t.projectID,
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now(),
	})
	t.mu.Unlock()
	close(done)

	t.persist(ctx, models.RoleAssistant, answer)
}

// persist writes to the remote log; failures are logged and dropped.
func (t *Transcript) persist(ctx context.Context, role, content string) {
	if _, err := t.remote.SendMessage(ctx, t.projectID, role, content); err != nil {
		t.log.Warn("chat: persist message failed",
			slog.String("project", t.projectID),
			slog.String("role", role),
			slog.String("error", err.Error()),
		)
	}
}

// Close cancels a pending reply.
func (t *Transcript) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.pending != nil {
		close(t.pending)
		t.pending = nil
	}
	t.typing = false
}
