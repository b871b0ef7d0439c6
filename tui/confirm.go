package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmRequest is a question waiting for the person at the keyboard.
type confirmRequest struct {
	prompt string
	reply  chan<- bool
}

// PromptConfirmer asks yes/no questions through the screen. Confirm
// blocks until the Model delivers an answer, so it must be called from a
// command, never from Update.
type PromptConfirmer struct {
	requests chan confirmRequest
}

// NewPromptConfirmer creates a confirmer to be shared by a Controller and
// the Model that renders its prompts.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{requests: make(chan confirmRequest)}
}

// Confirm shows prompt and waits for y or n. A cancelled context counts
// as no.
func (p *PromptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	select {
	case p.requests <- confirmRequest{prompt: prompt, reply: reply}:
	case <-ctx.Done():
		return false
	}
	select {
	case answer := <-reply:
		return answer
	case <-ctx.Done():
		return false
	}
}

// listenForConfirm returns a tea.Cmd that blocks until a question is
// asked, then delivers it as a confirmRequestMsg.
func listenForConfirm(prompts *PromptConfirmer) tea.Cmd {
	if prompts == nil {
		return nil
	}
	return func() tea.Msg {
		return confirmRequestMsg{request: <-prompts.requests}
	}
}
