package audio

import (
	"bertraco/app/client/player"
	"bertraco/app/client/voice"
	"bertraco/app/service/queue"

	"github.com/samber/do"
)

func New(di *do.Injector) (*Worker, error) {
	return NewWorker(
		queue.New[WordChunk](),
		do.MustInvoke[*voice.Synthesizer](di),
		do.MustInvoke[*player.Player](di),
	), nil
}
