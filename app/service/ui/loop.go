package ui

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"bertraco/app/service/face"
	"bertraco/app/service/queue"

	"github.com/jonboulle/clockwork"
)

var _ face.Scheduler = (*Loop)(nil)

// Loop owns the face and the transcript and runs every callback posted to it on a single goroutine.
// All exported signal methods are safe to call from any goroutine and never block.
type Loop struct {
	clock clockwork.Clock
	tick  time.Duration
	inbox *queue.Queue[func()]

	face       *face.Face
	transcript *Transcript
}

type Snapshot struct {
	Frame      face.Frame `json:"frame"`
	Transcript string     `json:"transcript"`
}

func NewLoop(faceCfg face.Config, clk clockwork.Clock, rnd *rand.Rand, out io.Writer, renderer face.Renderer) *Loop {
	l := &Loop{
		clock:      clk,
		tick:       faceCfg.Tick,
		inbox:      queue.New[func()](),
		transcript: NewTranscript(out),
	}
	l.face = face.New(faceCfg, clk, rnd, l, renderer)

	return l
}

// Run ticks the face and executes posted callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.runPosted()
			return nil
		case <-ticker.Chan():
			l.face.Tick()
		case <-l.inbox.Ready():
			l.runPosted()
		}
	}
}

func (l *Loop) runPosted() {
	for _, fn := range l.inbox.Drain() {
		fn()
	}
}

// Post schedules fn on the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.inbox.Put(fn)
}

// After posts fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) {
	l.clock.AfterFunc(d, func() {
		l.Post(fn)
	})
}

func (l *Loop) Wake() {
	l.Post(l.face.Wake)
}

func (l *Loop) StartSpeaking() {
	l.Post(l.face.StartSpeaking)
}

func (l *Loop) StopSpeaking() {
	l.Post(l.face.StopSpeaking)
}

func (l *Loop) DisplayUserMessage(text string) {
	l.Post(func() {
		l.transcript.UserMessage(text)
	})
}

func (l *Loop) StartAssistantMessage() {
	l.Post(l.transcript.AssistantStart)
}

func (l *Loop) AppendAssistantMessage(fragment string) {
	l.Post(func() {
		l.transcript.AssistantAppend(fragment)
	})
}

func (l *Loop) EndAssistantMessage() {
	l.Post(l.transcript.AssistantEnd)
}

// Snapshot reads the face and the transcript on the loop goroutine.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	result := make(chan Snapshot, 1)

	l.Post(func() {
		result <- Snapshot{
			Frame:      l.face.Frame(),
			Transcript: l.transcript.Text(),
		}
	})

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case snapshot := <-result:
		return snapshot, nil
	}
}
