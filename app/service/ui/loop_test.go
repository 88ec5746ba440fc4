package ui

import (
	"bytes"
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"bertraco/app/config"
	"bertraco/app/service/face"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startLoop(t *testing.T) (*Loop, *clockwork.FakeClock, *syncBuffer) {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	out := &syncBuffer{}
	l := NewLoop(face.DefaultConfig(), clk, rand.New(rand.NewPCG(7, 7)), out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return l, clk, out
}

func snapshot(t *testing.T, l *Loop) Snapshot {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s, err := l.Snapshot(ctx)
	require.NoError(t, err)

	return s
}

func TestLoop_DisplaysMessagesInOrder(t *testing.T) {
	l, _, out := startLoop(t)

	l.DisplayUserMessage("hola")
	l.StartAssistantMessage()
	for _, fragment := range []string{"Hola", " mundo", "!"} {
		l.AppendAssistantMessage(fragment)
	}
	l.EndAssistantMessage()

	s := snapshot(t, l)
	expected := "You: hola\nAssistant: Hola mundo!\n"
	assert.Equal(t, expected, s.Transcript)
	assert.Equal(t, expected, out.String())
}

func TestLoop_SignalsDriveFace(t *testing.T) {
	l, _, _ := startLoop(t)

	l.StartSpeaking()
	assert.Equal(t, face.StateSpeaking, snapshot(t, l).Frame.State)

	l.StopSpeaking()
	assert.Equal(t, face.StateIdle, snapshot(t, l).Frame.State)
}

func TestLoop_TicksPutIdleFaceToSleepAndWakeRestoresIt(t *testing.T) {
	l, clk, _ := startLoop(t)

	require.Eventually(t, func() bool {
		clk.Advance(500 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		s, err := l.Snapshot(ctx)
		return err == nil && s.Frame.State == face.StateSleeping
	}, 5*time.Second, 5*time.Millisecond)

	l.Wake()

	assert.Equal(t, face.StateIdle, snapshot(t, l).Frame.State)
}

func TestLoop_AfterRunsOnLoop(t *testing.T) {
	l, clk, _ := startLoop(t)

	fired := make(chan struct{})
	l.After(time.Second, func() {
		close(fired)
	})

	clk.Advance(999 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("fired too early")
	case <-time.After(20 * time.Millisecond):
	}

	clk.Advance(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
}

func TestLoop_ConcurrentPostersAreSerialized(t *testing.T) {
	l, _, _ := startLoop(t)

	const posters, perPoster = 8, 100
	counter := 0

	var wg sync.WaitGroup
	for range posters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perPoster {
				l.Post(func() {
					counter++
				})
			}
		}()
	}
	wg.Wait()

	result := make(chan int, 1)
	l.Post(func() {
		result <- counter
	})

	select {
	case n := <-result:
		assert.Equal(t, posters*perPoster, n)
	case <-time.After(time.Second):
		t.Fatal("loop did not drain its inbox")
	}
}

func TestFaceConfig_UsesDefaultsWithoutOverlays(t *testing.T) {
	cfg := FaceConfig(config.Face{Tick: time.Second})

	assert.Equal(t, time.Second, cfg.Tick)
	assert.Len(t, cfg.Overlays, 5)

	cfg = FaceConfig(config.Face{Overlays: []config.Overlay{{Kind: "blinking", Weight: 1}}})
	require.Len(t, cfg.Overlays, 1)
	assert.Equal(t, face.OverlayBlink, cfg.Overlays[0].Kind)
}
