package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bertraco/app/service/audio"
	"bertraco/app/service/chat"
	"bertraco/app/service/dispatch"
	"bertraco/app/service/ui"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

type Runner interface {
	Run(ctx context.Context) error
}

// Service runs the UI loop and both workers and stops them in pipeline order.
type Service struct {
	loop       Runner
	chat       *chat.Worker
	audio      *audio.Worker
	dispatcher *dispatch.Service

	grace time.Duration
}

type Status struct {
	Chat       string `json:"chat"`
	Audio      string `json:"audio"`
	InputQueue int    `json:"input_queue"`
	AudioQueue int    `json:"audio_queue"`
	Turns      int64  `json:"turns"`
	Played     int64  `json:"played"`
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		loop:       do.MustInvoke[*ui.Loop](di),
		chat:       do.MustInvoke[*chat.Worker](di),
		audio:      do.MustInvoke[*audio.Worker](di),
		dispatcher: do.MustInvoke[*dispatch.Service](di),
		grace:      shutdownGrace,
	}, nil
}

// Run blocks until ctx is done. The workers may end earlier on failure while the UI keeps running.
// On ctx done the input sentinel is sent and the workers get a grace period to drain before they are cancelled.
func (s *Service) Run(ctx context.Context) error {
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		_ = s.loop.Run(workCtx)
	}()

	var group errgroup.Group
	group.Go(worker("chat", func() error { return s.chat.Run(workCtx) }))
	group.Go(worker("audio", func() error { return s.audio.Run(workCtx) }))

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- group.Wait()
	}()

	<-ctx.Done()

	slog.Info("Stopping workers...")
	_ = s.dispatcher.Shutdown()

	var err error
	select {
	case err = <-workersDone:
	case <-time.After(s.grace):
		slog.Warn("Workers did not stop in time, interrupting", "grace", s.grace)
		cancelWork()
		err = <-workersDone
	}

	cancelWork()
	<-uiDone

	return err
}

func worker(name string, run func() error) func() error {
	return func() error {
		start := time.Now()

		err := run()
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Worker failed", "worker", name, "error", err, "uptime", time.Since(start))
			return err
		}

		slog.Info("Worker finished", "worker", name, "uptime", time.Since(start))

		return nil
	}
}

func (s *Service) Status() Status {
	return Status{
		Chat:       s.chat.State().String(),
		Audio:      s.audio.State().String(),
		InputQueue: s.dispatcher.Input().Len(),
		AudioQueue: s.audio.Queue().Len(),
		Turns:      s.chat.Turns(),
		Played:     s.audio.Played(),
	}
}
