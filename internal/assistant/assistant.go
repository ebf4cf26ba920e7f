// Package assistant simulates the AI collaborator: it answers every prompt
// with a canned reply after a randomised thinking delay.
package assistant

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Surface names the screen a conversation happens on. Each surface has
// its own reply set.
type Surface string

const (
	SurfaceChat   Surface = "chat"
	SurfaceEditor Surface = "editor"
)

// ChatReplies are used on the standalone chat screen.
var ChatReplies = []string{
	"I can help you build that! Let me set up the components and structure for you. The changes will be reflected in your project editor.",
	"Great idea! I've thought through the architecture and I think the best approach would be to use a clean component hierarchy with proper state management.",
	"I've analyzed your request. For the best user experience, I'd recommend a minimalist approach with focus on clarity and conversion optimization.",
	"That sounds like a fantastic project. I can help you build it from scratch or work with what you have. What would you like to start with?",
	"I've got some great ideas for this! We can make it both beautiful and highly functional. Where would you like to begin?",
}

// EditorReplies are used in the editor's chat panel.
var EditorReplies = []string{
	"I've analyzed your request and made the necessary updates. The changes are reflected in the preview on the right.",
	"Done! I've updated the component with the changes you described. Take a look at the preview to see how it looks.",
	"I've implemented that feature for you. The code has been updated and you can see the result in the preview panel.",
	"Great idea! I've made those changes. The component now includes the new functionality you requested.",
	"I've refactored that section to be cleaner and more maintainable. The updated version is visible in the preview.",
	"I've added the new section you described. It's been styled to match the rest of your app and is ready to preview.",
	"Those changes look great! I've updated the styling and layout. Check the preview to see the improved version.",
	"I've integrated that functionality into your existing code. Everything should be working smoothly in the preview.",
}

// Replies returns the reply set of s. Unknown surfaces get ChatReplies.
func Replies(s Surface) []string {
	if s == SurfaceEditor {
		return EditorReplies
	}
	return ChatReplies
}

// Responder picks replies uniformly at random. It is safe for concurrent use.
type Responder struct {
	replies  []string
	minDelay time.Duration
	maxDelay time.Duration

	mu   sync.Mutex
	intn func(n int) int
}

// New creates a responder over replies with a thinking delay drawn
// uniformly from [minDelay, maxDelay].
func New(replies []string, minDelay, maxDelay time.Duration) *Responder {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Responder{replies: replies, minDelay: minDelay, maxDelay: maxDelay, intn: rand.IntN}
}

// Reply returns a canned answer. The prompt does not influence it.
func (r *Responder) Reply(string) string {
	if len(r.replies) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replies[r.intn(len(r.replies))]
}

// Delay returns how long the assistant "thinks" before replying.
func (r *Responder) Delay() time.Duration {
	span := r.maxDelay - r.minDelay
	if span <= 0 {
		return r.minDelay
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minDelay + time.Duration(r.intn(int(span)+1))
}
