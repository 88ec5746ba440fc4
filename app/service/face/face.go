package face

import (
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler runs fn on the animation goroutine after d.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Face is the animation state machine. It is not safe for concurrent use:
// every method must be called from the goroutine that owns it.
type Face struct {
	cfg      Config
	clock    clockwork.Clock
	rnd      *rand.Rand
	sched    Scheduler
	renderer Renderer

	state        State
	overlay      Overlay
	overlayToken uint64
	lastActivity time.Time
	idleDelay    time.Duration

	eyes          EyeShape
	pupilsVisible bool
	pupilOffset   Point
	mouth         MouthShape
	mouthJitter   int
	tongue        bool
	particles     []Point
}

func New(cfg Config, clk clockwork.Clock, rnd *rand.Rand, sched Scheduler, renderer Renderer) *Face {
	f := &Face{
		cfg:          cfg,
		clock:        clk,
		rnd:          rnd,
		sched:        sched,
		renderer:     renderer,
		state:        StateIdle,
		lastActivity: clk.Now(),
		idleDelay:    cfg.IdleDelayMin,
		mouth:        MouthClosed,
	}
	f.resetEyes()

	return f
}

// Tick advances the animation by one step.
func (f *Face) Tick() {
	now := f.clock.Now()
	elapsed := now.Sub(f.lastActivity)

	switch {
	case f.state == StateSpeaking:
		f.lastActivity = now
		f.animateMouth()
	case f.state == StateSleeping:
		f.animateSleep()
	case elapsed >= f.cfg.SleepTimeout:
		f.startSleeping()
	case elapsed >= f.idleDelay:
		f.runIdleOverlay()
		f.idleDelay = f.drawIdleDelay()
	default:
		return
	}

	f.emit()
}

// Wake leaves the sleeping state and refreshes the activity clock.
func (f *Face) Wake() {
	if f.state == StateSleeping {
		f.stopSleeping()
	}
	f.lastActivity = f.clock.Now()

	f.emit()
}

func (f *Face) StartSpeaking() {
	f.Wake()
	f.clearOverlay()
	f.state = StateSpeaking

	f.emit()
}

func (f *Face) StopSpeaking() {
	if f.state == StateSpeaking {
		f.state = StateIdle
	}
	f.lastActivity = f.clock.Now()
	f.mouth = MouthClosed
	f.mouthJitter = 0
	f.resetEyes()

	f.emit()
}

func (f *Face) State() State {
	return f.state
}

func (f *Face) Overlay() Overlay {
	return f.overlay
}

// LastActivity is the activity clock.
func (f *Face) LastActivity() time.Time {
	return f.lastActivity
}

func (f *Face) Frame() Frame {
	particles := make([]Point, len(f.particles))
	copy(particles, f.particles)

	return Frame{
		State:         f.state,
		Overlay:       f.overlay,
		Eyes:          f.eyes,
		PupilsVisible: f.pupilsVisible,
		PupilOffset:   f.pupilOffset,
		Mouth:         f.mouth,
		MouthJitter:   f.mouthJitter,
		Tongue:        f.tongue,
		Particles:     particles,
	}
}

func (f *Face) emit() {
	if f.renderer != nil {
		f.renderer.Render(f.Frame())
	}
}

func (f *Face) animateMouth() {
	if f.mouth == MouthClosed {
		f.mouth = MouthOpen
		f.mouthJitter = f.uniformInt(-openJitter, openJitter)
		f.pupilOffset.Y += f.uniformInt(-pupilNudge, pupilNudge)
		return
	}

	f.mouth = MouthClosed
	f.mouthJitter = 0
	f.resetEyes()
}

func (f *Face) startSleeping() {
	f.clearOverlay()
	f.state = StateSleeping
	f.eyes = EyesClosed
	f.pupilsVisible = false
}

func (f *Face) stopSleeping() {
	f.state = StateIdle
	f.particles = nil
	f.resetEyes()
}

// resetEyes restores neutral eyes unless the face is asleep.
func (f *Face) resetEyes() {
	if f.state == StateSleeping {
		return
	}

	f.eyes = EyesOpen
	f.pupilsVisible = true
	f.pupilOffset = Point{}
}

func (f *Face) uniformInt(lo, hi int) int {
	return lo + f.rnd.IntN(hi-lo+1)
}

func (f *Face) uniformDuration(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}

	return r.Min + time.Duration(f.rnd.Int64N(int64(r.Max-r.Min)+1))
}

func (f *Face) drawIdleDelay() time.Duration {
	span := f.cfg.IdleDelayMax - f.cfg.IdleDelayMin

	return f.cfg.IdleDelayMin + time.Duration(f.rnd.Float64()*float64(span))
}
