package llm

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
)

type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

var _ Generator = (*Translating)(nil)

// Translating lets a generator answer in its own language.
// The question is translated before generation, the complete answer is translated back
// and then replayed word by word, one word every wordDelay.
//
// History arrives in the user's language. Every text this generator translated is remembered
// together with its model-language original, so earlier turns reach the model exactly as it saw them.
type Translating struct {
	next       Generator
	translator Translator
	clock      clockwork.Clock

	userLanguage  string
	modelLanguage string
	wordDelay     time.Duration

	mu      sync.Mutex
	inModel map[string]string
}

func NewTranslating(
	next Generator,
	translator Translator,
	clk clockwork.Clock,
	userLanguage, modelLanguage string,
	wordDelay time.Duration,
) *Translating {
	return &Translating{
		next:          next,
		translator:    translator,
		clock:         clk,
		userLanguage:  userLanguage,
		modelLanguage: modelLanguage,
		wordDelay:     wordDelay,
		inModel:       make(map[string]string),
	}
}

func (t *Translating) Stream(ctx context.Context, question string, history []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		modelHistory, err := t.modelHistory(ctx, history)
		if err != nil {
			yield("", oops.In("translate").With("direction", "history").Wrapf(err, "failed to translate history"))
			return
		}

		translated, err := t.translator.Translate(ctx, question, t.userLanguage, t.modelLanguage)
		if err != nil {
			yield("", oops.In("translate").With("direction", "question").Wrapf(err, "failed to translate question"))
			return
		}

		var answer strings.Builder
		for fragment, err := range t.next.Stream(ctx, translated, modelHistory) {
			if err != nil {
				yield("", err)
				return
			}
			answer.WriteString(fragment)
		}

		result, err := t.translator.Translate(ctx, answer.String(), t.modelLanguage, t.userLanguage)
		if err != nil {
			yield("", oops.In("translate").With("direction", "answer").Wrapf(err, "failed to translate answer"))
			return
		}

		words := strings.Fields(result)
		t.remember(history,
			translation{user: question, model: translated},
			translation{user: strings.Join(words, " "), model: strings.TrimSpace(answer.String())},
		)

		for i, word := range words {
			if i > 0 {
				if err = t.sleep(ctx); err != nil {
					yield("", err)
					return
				}
			}

			if !yield(word+" ", nil) {
				return
			}
		}
	}
}

// modelHistory swaps every message for its model-language original.
// Messages this generator has never seen are translated on the spot.
func (t *Translating) modelHistory(ctx context.Context, history []Message) ([]Message, error) {
	result := make([]Message, 0, len(history))

	for _, message := range history {
		t.mu.Lock()
		content, ok := t.inModel[strings.TrimSpace(message.Content)]
		t.mu.Unlock()

		if !ok {
			var err error
			content, err = t.translator.Translate(ctx, message.Content, t.userLanguage, t.modelLanguage)
			if err != nil {
				return nil, err
			}
		}

		result = append(result, Message{Role: message.Role, Content: content})
	}

	return result, nil
}

type translation struct {
	user  string
	model string
}

// remember keeps the originals still referenced by history plus the ones of the turn just finished.
func (t *Translating) remember(history []Message, latest ...translation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make(map[string]string, len(history)+len(latest))
	for _, message := range history {
		key := strings.TrimSpace(message.Content)
		if content, ok := t.inModel[key]; ok {
			kept[key] = content
		}
	}
	for _, pair := range latest {
		kept[strings.TrimSpace(pair.user)] = pair.model
	}

	t.inModel = kept
}

func (t *Translating) sleep(ctx context.Context) error {
	if t.wordDelay <= 0 {
		return nil
	}

	done := make(chan struct{})
	timer := t.clock.AfterFunc(t.wordDelay, func() {
		close(done)
	})
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
