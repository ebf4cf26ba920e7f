package studio

import (
	"context"
	"fmt"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/assistant"
	"github.com/starford/webcraft/internal/chat"
	"github.com/starford/webcraft/internal/models"
)

// Transcript is the chat shown for a project: the remote log plus local
// echoes, and whether an answer is pending.
type Transcript struct {
	ProjectID string               `json:"projectId"`
	Messages  []models.ChatMessage `json:"messages"`
	Typing    bool                 `json:"typing"`
}

func transcriptView(t *chat.Transcript) *Transcript {
	return &Transcript{
		ProjectID: t.ProjectID(),
		Messages:  nonNilSlice(t.Messages()),
		Typing:    t.Typing(),
	}
}

// ParseSurface maps "" to the chat screen and rejects unknown surfaces.
func ParseSurface(s string) (assistant.Surface, error) {
	switch sf := assistant.Surface(s); sf {
	case "":
		return assistant.SurfaceChat, nil
	case assistant.SurfaceChat, assistant.SurfaceEditor:
		return sf, nil
	}
	return "", apperr.Invalid(fmt.Errorf("surface: %q is not chat or editor", s))
}

// Transcript returns the caller's transcript for a project.
func (s *Service) Transcript(ctx context.Context, projectID string) (*Transcript, error) {
	t, err := s.chats.Open(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return transcriptView(t), nil
}

// RefreshTranscript reloads the remote log before returning the transcript.
func (s *Service) RefreshTranscript(ctx context.Context, projectID string) (*Transcript, error) {
	t, err := s.chats.Refresh(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return transcriptView(t), nil
}

// SendChat posts a user message. The answer arrives later as a
// chat.message event.
func (s *Service) SendChat(ctx context.Context, projectID string, surface assistant.Surface, content string) (*Transcript, error) {
	t, _, err := s.chats.Send(ctx, projectID, surface, content)
	if err != nil {
		return nil, err
	}
	return transcriptView(t), nil
}

// ChatLog returns the persisted messages of a project.
func (s *Service) ChatLog(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	msgs, err := s.backend.GetChatHistory(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(msgs), nil
}
