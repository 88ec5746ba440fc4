package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"bertraco/app/client/voice"

	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
)

// ErrInterrupted is returned by Play when playback was cut short by StopAll or by its context.
var ErrInterrupted = errors.New("playback interrupted")

type backend func(ctx context.Context, clip voice.Clip) error

// Player plays clips one call at a time and lets any goroutine stop whatever is playing.
type Player struct {
	play backend

	mu      sync.Mutex
	nextID  int
	playing map[int]context.CancelFunc
}

func newPlayer(play backend) *Player {
	return &Player{
		play:    play,
		playing: make(map[int]context.CancelFunc),
	}
}

// NewCommand pipes every clip as a WAV file into a fresh process, e.g. `aplay -q -`.
func NewCommand(command string, args ...string) *Player {
	return newPlayer(func(ctx context.Context, clip voice.Clip) error {
		return runCommand(ctx, clip, command, args)
	})
}

// NewSilent waits for the clip duration without producing sound.
func NewSilent(clk clockwork.Clock) *Player {
	return newPlayer(func(ctx context.Context, clip voice.Clip) error {
		done := make(chan struct{})
		timer := clk.AfterFunc(clip.Duration(), func() {
			close(done)
		})
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		}
	})
}

// Play blocks until the clip finished playing.
func (p *Player) Play(ctx context.Context, clip voice.Clip) error {
	ctx, release := p.track(ctx)
	defer release()

	err := p.play(ctx, clip)
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	return err
}

// StopAll interrupts every playback in progress.
func (p *Player) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, cancel := range p.playing {
		cancel()
		delete(p.playing, id)
	}
}

func (p *Player) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.playing[id] = cancel
	p.mu.Unlock()

	return ctx, func() {
		p.mu.Lock()
		delete(p.playing, id)
		p.mu.Unlock()

		cancel()
	}
}

func runCommand(ctx context.Context, clip voice.Clip, command string, args []string) error {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = bytes.NewReader(clip.WAV())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	scanner := bufio.NewScanner(&stderr)
	for scanner.Scan() {
		slog.Debug(command, "stderr", scanner.Text())
	}

	if err != nil {
		return oops.
			In("player").
			With("cmd", command+" "+strings.Join(args, " ")).
			Wrapf(err, "playback command failed")
	}

	return nil
}
