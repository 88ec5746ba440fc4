package dispatch

import (
	"log/slog"
	"strings"
	"sync"

	"bertraco/app/service/queue"
	"bertraco/app/service/ui"

	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Display is the part of the UI marshal the dispatcher talks to.
type Display interface {
	DisplayUserMessage(text string)
}

// Service is the input side of the pipeline: every front-end submits questions here.
type Service struct {
	input   *queue.Queue[string]
	display Display

	mu       sync.Mutex
	shutdown bool
}

func New(di *do.Injector) (*Service, error) {
	return NewService(do.MustInvoke[*ui.Loop](di)), nil
}

func NewService(display Display) *Service {
	return &Service{
		input:   queue.New[string](),
		display: display,
	}
}

// Submit shows the question and enqueues it for the chat worker.
// Blank questions and questions submitted after Shutdown are rejected.
func (s *Service) Submit(question string) bool {
	question = strings.TrimSpace(question)
	if question == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		slog.Warn("Question dropped after shutdown", "question", question)
		return false
	}

	s.display.DisplayUserMessage(question)
	s.input.Put(question)

	return true
}

func (s *Service) Input() *queue.Queue[string] {
	return s.input
}

// Shutdown enqueues the sentinel once.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return nil
	}
	s.shutdown = true

	s.input.Close()

	return nil
}
