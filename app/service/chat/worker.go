package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"bertraco/app/client/llm"
	"bertraco/app/service/audio"
	"bertraco/app/service/queue"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ErrTransport marks a failed generation stream. It ends the worker.
var ErrTransport = errors.New("generation stream failed")

// Marshal runs display and face updates on the UI goroutine.
type Marshal interface {
	Wake()
	StartSpeaking()
	StopSpeaking()
	DisplayUserMessage(text string)
	StartAssistantMessage()
	AppendAssistantMessage(fragment string)
	EndAssistantMessage()
}

type Stopper interface {
	StopAll()
}

type State int32

const (
	StateWaiting State = iota
	StateProcessing
	StateStreaming
	StateFlushing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateProcessing:
		return "processing"
	case StateStreaming:
		return "streaming"
	case StateFlushing:
		return "flushing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Worker answers questions one at a time.
type Worker struct {
	input     *queue.Queue[string]
	audio     *queue.Queue[audio.WordChunk]
	sink      Stopper
	ui        Marshal
	generator llm.Generator
	history   *History

	state atomic.Int32
	turns atomic.Int64
}

func NewWorker(
	input *queue.Queue[string],
	audioQueue *queue.Queue[audio.WordChunk],
	sink Stopper,
	ui Marshal,
	generator llm.Generator,
	history *History,
) *Worker {
	return &Worker{
		input:     input,
		audio:     audioQueue,
		sink:      sink,
		ui:        ui,
		generator: generator,
		history:   history,
	}
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

// Turns counts answered questions.
func (w *Worker) Turns() int64 {
	return w.turns.Load()
}

func (w *Worker) setState(state State) {
	w.state.Store(int32(state))
}

// Run processes questions until the sentinel, a transport failure or the end of ctx.
// The audio queue receives exactly one sentinel when Run returns.
func (w *Worker) Run(ctx context.Context) error {
	defer w.setState(StateStopped)
	defer w.audio.Close()

	for {
		w.setState(StateWaiting)

		item, err := w.input.Take(ctx)
		if errors.Is(err, queue.ErrStopped) {
			slog.Info("Chat worker stopped")
			return nil
		}
		if err != nil {
			return err
		}

		if err = w.answer(ctx, item.Value); err != nil {
			return err
		}
	}
}

func (w *Worker) answer(ctx context.Context, question string) error {
	w.setState(StateProcessing)

	turnID := uuid.New()
	w.ui.Wake()

	var (
		answer  strings.Builder
		chunker Chunker
		started bool
	)

	finish := func() {
		if started {
			w.ui.StopSpeaking()
			w.ui.EndAssistantMessage()
		}
	}

	w.setState(StateStreaming)

	for fragment, err := range w.generator.Stream(ctx, question, w.history.Messages()) {
		if err != nil {
			finish()

			if ctx.Err() != nil {
				return ctx.Err()
			}

			slog.Error("Generation failed, chat stops", "turn", turnID, "error", err)

			return oops.
				In("chat").
				With("turn", turnID).
				Wrapf(fmt.Errorf("%w: %w", ErrTransport, err), "failed to stream answer")
		}

		if !started {
			started = true
			w.ui.StartSpeaking()
			w.ui.StartAssistantMessage()
		}

		w.ui.AppendAssistantMessage(fragment)
		answer.WriteString(fragment)

		if chunk, ok := chunker.Write(fragment); ok {
			w.audio.Put(audio.WordChunk{Text: chunk, TurnID: turnID})
		}
	}

	w.setState(StateFlushing)

	w.sink.StopAll()
	dropped := w.audio.Flush()

	finish()

	w.history.Add(Turn{Question: question, Answer: strings.TrimSpace(answer.String())})
	w.turns.Add(1)

	slog.Info("Answered question",
		"turn", turnID,
		"question", question,
		"answer_length", answer.Len(),
		"dropped_chunks", dropped,
		"unvoiced", chunker.Remainder(),
	)

	return nil
}
