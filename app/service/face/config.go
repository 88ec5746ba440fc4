package face

import "time"

type Config struct {
	// Interval between two animation ticks
	Tick time.Duration
	// Inactivity after which the face falls asleep
	SleepTimeout time.Duration
	// Bounds of the randomized delay between idle overlays
	IdleDelayMin time.Duration
	IdleDelayMax time.Duration
	// Chance per sleeping tick to spawn a new Z
	ParticleProbability float64
	// Idle overlays with their weights and revert delays
	Overlays []OverlaySpec
}

type OverlaySpec struct {
	Kind   Overlay
	Weight float64
	Revert Range
}

// Range is an inclusive duration interval.
type Range struct {
	Min time.Duration
	Max time.Duration
}

const (
	canvasWidth = 200
	mouthY      = 130

	openJitter     = 5
	pupilNudge     = 1
	lookAroundMaxX = 10
	lookAroundMaxY = 5

	particleStepX = -1
	particleStepY = -2
)

func DefaultConfig() Config {
	return Config{
		Tick:                500 * time.Millisecond,
		SleepTimeout:        10 * time.Second,
		IdleDelayMin:        1500 * time.Millisecond,
		IdleDelayMax:        5 * time.Second,
		ParticleProbability: 0.1,
		Overlays: []OverlaySpec{
			{Kind: OverlayBlink, Weight: 0.55, Revert: Range{50 * time.Millisecond, 50 * time.Millisecond}},
			{Kind: OverlayLookAround, Weight: 0.20, Revert: Range{700 * time.Millisecond, 1500 * time.Millisecond}},
			{Kind: OverlayLongBlink, Weight: 0.05, Revert: Range{1000 * time.Millisecond, 2500 * time.Millisecond}},
			{Kind: OverlayStickTongue, Weight: 0.05, Revert: Range{1000 * time.Millisecond, 2000 * time.Millisecond}},
			{Kind: OverlayConcentrate, Weight: 0.15, Revert: Range{1000 * time.Millisecond, 2500 * time.Millisecond}},
		},
	}
}
