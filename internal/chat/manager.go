package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/webcraft/internal/assistant"
	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/models"
)

// Backend is the remote surface a Manager reads and writes.
type Backend interface {
	Remote
	GetChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error)
}

// AppendFunc observes every locally appended message.
type AppendFunc func(owner string, m models.ChatMessage)

type key struct {
	owner     string
	projectID string
}

// Manager keeps one transcript per caller and project.
type Manager struct {
	backend  Backend
	replies  map[assistant.Surface]Replier
	log      *slog.Logger
	onAppend AppendFunc

	mu          sync.Mutex
	transcripts map[key]*Transcript
}

// NewManager creates a manager. replies maps each surface to its replier;
// SurfaceChat is used when a surface has none.
func NewManager(b Backend, replies map[assistant.Surface]Replier, log *slog.Logger, onAppend AppendFunc) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		backend:     b,
		replies:     replies,
		log:         log,
		onAppend:    onAppend,
		transcripts: make(map[key]*Transcript),
	}
}

func (m *Manager) replier(s assistant.Surface) Replier {
	if r, ok := m.replies[s]; ok {
		return r
	}
	return m.replies[assistant.SurfaceChat]
}

// Open selects projectID for the caller and returns its transcript. The
// transcript is seeded from the remote log, and reseeded on every later
// selection unless an assistant reply is pending.
func (m *Manager) Open(ctx context.Context, projectID string) (*Transcript, error) {
	t, created, err := m.transcript(ctx, projectID)
	if err != nil || created || t.Typing() {
		return t, err
	}
	return m.reseed(ctx, t)
}

// Refresh reloads the remote log into the caller's transcript.
func (m *Manager) Refresh(ctx context.Context, projectID string) (*Transcript, error) {
	t, created, err := m.transcript(ctx, projectID)
	if err != nil || created {
		return t, err
	}
	return m.reseed(ctx, t)
}

func (m *Manager) reseed(ctx context.Context, t *Transcript) (*Transcript, error) {
	history, err := m.backend.GetChatHistory(ctx, t.ProjectID())
	if err != nil {
		return nil, err
	}
	t.Seed(history)
	return t, nil
}

// transcript returns the caller's transcript for projectID, creating and
// seeding it when there is none. created reports whether it was new.
func (m *Manager) transcript(ctx context.Context, projectID string) (_ *Transcript, created bool, _ error) {
	owner, err := identity.Require(ctx)
	if err != nil {
		return nil, false, err
	}
	k := key{owner: owner, projectID: projectID}

	m.mu.Lock()
	t, ok := m.transcripts[k]
	m.mu.Unlock()
	if ok {
		return t, false, nil
	}

	history, err := m.backend.GetChatHistory(ctx, projectID)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transcripts[k]; ok {
		return t, false, nil
	}
	t = NewTranscript(projectID, m.backend, m.replier(assistant.SurfaceChat), m.log)
	t.Seed(history)
	if m.onAppend != nil {
		t.OnAppend(func(msg models.ChatMessage) { m.onAppend(owner, msg) })
	}
	m.transcripts[k] = t
	return t, true, nil
}

// Send posts content to the caller's transcript, answered with the reply
// set of surface.
func (m *Manager) Send(ctx context.Context, projectID string, surface assistant.Surface, content string) (*Transcript, <-chan struct{}, error) {
	t, _, err := m.transcript(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	done, err := t.send(ctx, content, m.replier(surface))
	if err != nil {
		return nil, nil, err
	}
	return t, done, nil
}

// Forget drops the caller's transcript, cancelling any pending reply.
func (m *Manager) Forget(ctx context.Context, projectID string) {
	owner, ok := identity.Principal(ctx)
	if !ok {
		return
	}
	k := key{owner: owner, projectID: projectID}
	m.mu.Lock()
	t, ok := m.transcripts[k]
	delete(m.transcripts, k)
	m.mu.Unlock()
	if ok {
		t.Close()
	}
}

// Close cancels all pending replies.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.transcripts {
		t.Close()
		delete(m.transcripts, k)
	}
}
