package voice

import (
	"log/slog"
	"math/rand/v2"

	"bertraco/app/config"

	"github.com/samber/do"
)

func New(di *do.Injector) (*Synthesizer, error) {
	cfg := do.MustInvoke[*config.Config](di)

	opts := Options{
		SampleRate:          cfg.Voice.SampleRate,
		Gap:                 cfg.Voice.Gap,
		PitchRangeSemitones: cfg.Voice.PitchRangeSemitones,
	}
	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	if cfg.Voice.SamplesDir == "" {
		slog.Info("Voice disabled, no samples directory configured")
		return NewSynthesizer(nil, opts, rnd), nil
	}

	samples, err := LoadSamples(cfg.Voice.SamplesDir, cfg.Voice.SampleRate)
	if err != nil {
		slog.Warn("Voice disabled", "error", err)
		return NewSynthesizer(nil, opts, rnd), nil
	}

	synth := NewSynthesizer(samples, opts, rnd)
	if !synth.Enabled() {
		slog.Warn("Voice disabled, no samples found", "dir", cfg.Voice.SamplesDir)
	} else {
		slog.Info("Voice samples loaded", "count", len(samples))
	}

	return synth, nil
}
