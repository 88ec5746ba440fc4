package ui

import (
	"log/slog"
	"math/rand/v2"
	"os"

	"bertraco/app/config"
	"bertraco/app/service/face"

	"github.com/jonboulle/clockwork"
	"github.com/samber/do"
)

func New(di *do.Injector) (*Loop, error) {
	cfg := do.MustInvoke[*config.Config](di)

	seed := cfg.Face.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return NewLoop(
		FaceConfig(cfg.Face),
		clockwork.NewRealClock(),
		rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		os.Stdout,
		&frameLogger{},
	), nil
}

// FaceConfig converts the YAML face section, keeping the default overlays when none are configured.
func FaceConfig(cfg config.Face) face.Config {
	result := face.DefaultConfig()
	result.Tick = cfg.Tick
	result.SleepTimeout = cfg.SleepTimeout
	result.IdleDelayMin = cfg.IdleDelayMin
	result.IdleDelayMax = cfg.IdleDelayMax
	result.ParticleProbability = cfg.ParticleProbability

	if len(cfg.Overlays) > 0 {
		result.Overlays = make([]face.OverlaySpec, 0, len(cfg.Overlays))
		for _, o := range cfg.Overlays {
			result.Overlays = append(result.Overlays, face.OverlaySpec{
				Kind:   face.Overlay(o.Kind),
				Weight: o.Weight,
				Revert: face.Range{Min: o.RevertMin, Max: o.RevertMax},
			})
		}
	}

	return result
}

// frameLogger reports state and overlay changes; drawing is left to external renderers.
type frameLogger struct {
	last face.Frame
}

func (l *frameLogger) Render(frame face.Frame) {
	if frame.State != l.last.State {
		slog.Debug("Face state changed", "from", l.last.State, "to", frame.State)
	}
	if frame.Overlay != l.last.Overlay && frame.Overlay != face.OverlayNone {
		slog.Debug("Idle animation", "overlay", frame.Overlay)
	}

	l.last = frame
}
