package llm

import (
	"log/slog"

	"bertraco/app/client/translate"
	"bertraco/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/jonboulle/clockwork"
	"github.com/samber/do"
)

// New builds the configured backend, wrapped in translation when enabled.
func New(di *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](di)

	prompt := Prompt{
		System: cfg.Generator.SystemPrompt,
		Examples: pie.Map(cfg.Generator.Examples, func(e config.Example) Example {
			return Example{Question: e.Question, Answer: e.Answer}
		}),
	}

	var (
		result Generator
		err    error
	)

	switch cfg.Generator.Backend {
	case "openai":
		result = NewOpenAI(
			NewClient(cfg.Generator.BaseURL, cfg.Generator.Token),
			cfg.Generator.Model,
			cfg.Generator.Temperature,
			prompt,
		)
	default:
		result, err = NewOllama(
			cfg.Generator.BaseURL,
			cfg.Generator.Model,
			float64(cfg.Generator.Temperature),
			prompt,
		)
		if err != nil {
			return nil, err
		}
	}

	slog.Info("Generator ready", "backend", cfg.Generator.Backend, "model", cfg.Generator.Model)

	if !cfg.Translation.Enabled {
		return result, nil
	}

	slog.Info("Translation enabled",
		"user_language", cfg.Translation.UserLanguage,
		"model_language", cfg.Translation.ModelLanguage,
	)

	translator := translate.NewClient(
		NewClient(cfg.Translation.BaseURL, cfg.Translation.Token),
		cfg.Translation.Model,
	)

	return NewTranslating(
		result,
		translator,
		clockwork.NewRealClock(),
		cfg.Translation.UserLanguage,
		cfg.Translation.ModelLanguage,
		cfg.Translation.WordDelay,
	), nil
}
