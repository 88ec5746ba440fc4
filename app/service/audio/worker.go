package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"bertraco/app/client/player"
	"bertraco/app/client/voice"
	"bertraco/app/service/queue"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ErrPlayback marks a failure of the audio output. It ends the worker.
var ErrPlayback = errors.New("playback failed")

type State int32

const (
	StateWaiting State = iota
	StateSynthesizing
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateSynthesizing:
		return "synthesizing"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// WordChunk is a piece of the answer ending in whitespace.
type WordChunk struct {
	Text   string
	TurnID uuid.UUID
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (voice.Clip, error)
}

type Sink interface {
	Play(ctx context.Context, clip voice.Clip) error
	StopAll()
}

// Worker speaks queued chunks strictly one after another.
type Worker struct {
	queue *queue.Queue[WordChunk]
	synth Synthesizer
	sink  Sink

	state  atomic.Int32
	played atomic.Int64
}

func NewWorker(q *queue.Queue[WordChunk], synth Synthesizer, sink Sink) *Worker {
	return &Worker{
		queue: q,
		synth: synth,
		sink:  sink,
	}
}

func (w *Worker) Queue() *queue.Queue[WordChunk] {
	return w.queue
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

// Played counts chunks that were played to the end.
func (w *Worker) Played() int64 {
	return w.played.Load()
}

func (w *Worker) setState(state State) {
	w.state.Store(int32(state))
}

// Run consumes the queue until the sentinel, a playback failure or the end of ctx.
func (w *Worker) Run(ctx context.Context) error {
	defer w.setState(StateStopped)

	for {
		w.setState(StateWaiting)

		item, err := w.queue.Take(ctx)
		if errors.Is(err, queue.ErrStopped) {
			slog.Info("Audio worker stopped")
			return nil
		}
		if err != nil {
			return err
		}

		if err = w.speak(ctx, item); err != nil {
			slog.Error("Audio worker failed", "error", err)
			return err
		}
	}
}

func (w *Worker) speak(ctx context.Context, item queue.Item[WordChunk]) error {
	chunk := item.Value

	// a flush of the queue aborts the chunk wherever it is
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(item.Context(), cancel)
	defer stop()

	w.setState(StateSynthesizing)

	clip, err := w.synth.Synthesize(ctx, chunk.Text)
	switch {
	case errors.Is(err, voice.ErrNothingToSay):
		return nil
	case err != nil:
		if ctx.Err() == nil {
			slog.Warn("Failed to synthesize chunk, skipping", "turn", chunk.TurnID, "text", chunk.Text, "error", err)
		}
		return nil
	}

	if item.Context().Err() != nil {
		return nil
	}

	w.setState(StatePlaying)

	err = w.sink.Play(ctx, clip)
	switch {
	case err == nil:
		w.played.Add(1)
		return nil
	case errors.Is(err, player.ErrInterrupted), ctx.Err() != nil:
		slog.Debug("Chunk interrupted", "turn", chunk.TurnID, "text", chunk.Text)
		return nil
	default:
		return oops.
			In("audio").
			With("turn", chunk.TurnID).
			Wrapf(fmt.Errorf("%w: %w", ErrPlayback, err), "failed to play chunk")
	}
}
