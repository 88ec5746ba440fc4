package face

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	pending []func()
}

func (s *fakeScheduler) After(_ time.Duration, fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *fakeScheduler) runAll() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

type recordingRenderer struct {
	frames []Frame
}

func (r *recordingRenderer) Render(frame Frame) {
	r.frames = append(r.frames, frame)
}

func newTestFace(t *testing.T, cfg Config) (*Face, *clockwork.FakeClock, *fakeScheduler, *recordingRenderer) {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	sched := &fakeScheduler{}
	renderer := &recordingRenderer{}
	f := New(cfg, clk, rand.New(rand.NewPCG(1, 2)), sched, renderer)

	return f, clk, sched, renderer
}

func tickFor(f *Face, clk *clockwork.FakeClock, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += f.cfg.Tick {
		clk.Advance(f.cfg.Tick)
		f.Tick()
	}
}

func TestFace_FallsAsleepAfterTimeout(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	tickFor(f, clk, 9500*time.Millisecond)
	assert.NotEqual(t, StateSleeping, f.State())

	tickFor(f, clk, 500*time.Millisecond)
	require.Equal(t, StateSleeping, f.State())

	frame := f.Frame()
	assert.Equal(t, EyesClosed, frame.Eyes)
	assert.False(t, frame.PupilsVisible)
	assert.Equal(t, OverlayNone, frame.Overlay)
}

func TestFace_WakeLeavesSleepImmediately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticleProbability = 1
	f, clk, _, _ := newTestFace(t, cfg)

	tickFor(f, clk, 12*time.Second)
	require.Equal(t, StateSleeping, f.State())
	require.NotEmpty(t, f.Frame().Particles)

	f.Wake()

	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, clk.Now(), f.LastActivity())
	frame := f.Frame()
	assert.Empty(t, frame.Particles)
	assert.Equal(t, EyesOpen, frame.Eyes)
	assert.True(t, frame.PupilsVisible)

	clk.Advance(cfg.Tick)
	f.Tick()
	assert.NotEqual(t, StateSleeping, f.State())
}

func TestFace_WakeRefreshesActivityWhenAwake(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	clk.Advance(3 * time.Second)
	f.Wake()

	assert.Equal(t, clk.Now(), f.LastActivity())
	assert.Equal(t, StateIdle, f.State())
}

func TestFace_SpeakingTogglesMouthAndNeverSleeps(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	f.StartSpeaking()
	require.Equal(t, StateSpeaking, f.State())

	clk.Advance(f.cfg.Tick)
	f.Tick()
	open := f.Frame()
	assert.Equal(t, MouthOpen, open.Mouth)
	assert.GreaterOrEqual(t, open.MouthJitter, -openJitter)
	assert.LessOrEqual(t, open.MouthJitter, openJitter)
	assert.LessOrEqual(t, abs(open.PupilOffset.Y), pupilNudge)

	clk.Advance(f.cfg.Tick)
	f.Tick()
	closed := f.Frame()
	assert.Equal(t, MouthClosed, closed.Mouth)
	assert.Equal(t, Point{}, closed.PupilOffset)

	tickFor(f, clk, 30*time.Second)
	assert.Equal(t, StateSpeaking, f.State())
	assert.Equal(t, OverlayNone, f.Overlay())
	assert.Equal(t, clk.Now(), f.LastActivity())

	f.StopSpeaking()
	clk.Advance(f.cfg.Tick)
	f.Tick()
	assert.Equal(t, StateIdle, f.State(), "a long speech does not count as inactivity")
}

func TestFace_StopSpeakingRestoresNeutralFace(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	f.StartSpeaking()
	clk.Advance(f.cfg.Tick)
	f.Tick()
	require.Equal(t, MouthOpen, f.Frame().Mouth)

	clk.Advance(time.Second)
	f.StopSpeaking()

	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, clk.Now(), f.LastActivity())
	frame := f.Frame()
	assert.Equal(t, MouthClosed, frame.Mouth)
	assert.Equal(t, EyesOpen, frame.Eyes)
	assert.Equal(t, Point{}, frame.PupilOffset)
}

func TestFace_StartSpeakingWakesSleepingFace(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	tickFor(f, clk, 11*time.Second)
	require.Equal(t, StateSleeping, f.State())

	f.StartSpeaking()

	assert.Equal(t, StateSpeaking, f.State())
	assert.True(t, f.Frame().PupilsVisible)
}

func TestFace_IdleOverlayFiresAndReverts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlays = []OverlaySpec{
		{Kind: OverlayBlink, Weight: 1, Revert: Range{50 * time.Millisecond, 50 * time.Millisecond}},
	}
	f, clk, sched, _ := newTestFace(t, cfg)

	clk.Advance(cfg.IdleDelayMin)
	f.Tick()

	require.Equal(t, OverlayBlink, f.Overlay())
	assert.Equal(t, EyesClosed, f.Frame().Eyes)
	assert.GreaterOrEqual(t, f.idleDelay, cfg.IdleDelayMin)
	assert.Less(t, f.idleDelay, cfg.IdleDelayMax)
	require.Len(t, sched.pending, 1)

	sched.runAll()

	assert.Equal(t, OverlayNone, f.Overlay())
	assert.Equal(t, EyesOpen, f.Frame().Eyes)
	assert.True(t, f.Frame().PupilsVisible)
}

func TestFace_SupersededRevertIsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlays = []OverlaySpec{
		{Kind: OverlayStickTongue, Weight: 1, Revert: Range{time.Second, 2 * time.Second}},
	}
	f, clk, sched, _ := newTestFace(t, cfg)

	clk.Advance(cfg.IdleDelayMin)
	f.Tick()
	require.True(t, f.Frame().Tongue)

	f.StartSpeaking()
	assert.False(t, f.Frame().Tongue)

	clk.Advance(cfg.Tick)
	f.Tick()
	require.Equal(t, MouthOpen, f.Frame().Mouth)

	sched.runAll()

	assert.Equal(t, MouthOpen, f.Frame().Mouth, "stale revert must not close the speaking mouth")
	assert.Equal(t, StateSpeaking, f.State())
}

func TestFace_OverlaysOnlyWhileIdle(t *testing.T) {
	f, clk, _, _ := newTestFace(t, DefaultConfig())

	tickFor(f, clk, 15*time.Second)
	require.Equal(t, StateSleeping, f.State())

	for range 50 {
		clk.Advance(f.cfg.Tick)
		f.Tick()
		assert.Equal(t, OverlayNone, f.Overlay())
	}
}

func TestFace_SleepParticlesFollowTrajectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticleProbability = 0
	f, clk, _, _ := newTestFace(t, cfg)

	tickFor(f, clk, 10*time.Second)
	require.Equal(t, StateSleeping, f.State())

	f.cfg.ParticleProbability = 1
	f.Tick()
	require.Equal(t, []Point{{X: canvasWidth - 31, Y: mouthY - 22}}, f.Frame().Particles)

	f.cfg.ParticleProbability = 0
	for range 60 {
		f.Tick()
	}

	assert.Empty(t, f.Frame().Particles, "particles leave through the top edge")
}

func TestFace_OverlayDistributionMatchesWeights(t *testing.T) {
	f, _, _, _ := newTestFace(t, DefaultConfig())

	const trials = 200_000
	counts := make(map[Overlay]int)
	for range trials {
		o, ok := f.pickOverlay()
		require.True(t, ok)
		counts[o.Kind]++
	}

	for _, o := range f.cfg.Overlays {
		freq := float64(counts[o.Kind]) / trials
		assert.InDelta(t, o.Weight, freq, 0.01, "overlay %s", o.Kind)
	}
}

func TestFace_RendersEveryChange(t *testing.T) {
	f, clk, _, renderer := newTestFace(t, DefaultConfig())

	f.StartSpeaking()
	clk.Advance(f.cfg.Tick)
	f.Tick()

	require.NotEmpty(t, renderer.frames)
	last := renderer.frames[len(renderer.frames)-1]
	assert.Equal(t, StateSpeaking, last.State)
	assert.Equal(t, MouthOpen, last.Mouth)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
