package chat

import (
	"bertraco/app/client/llm"
	"bertraco/app/client/player"
	"bertraco/app/config"
	"bertraco/app/service/audio"
	"bertraco/app/service/dispatch"
	"bertraco/app/service/ui"

	"github.com/samber/do"
)

var _ Marshal = (*ui.Loop)(nil)

func New(di *do.Injector) (*Worker, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWorker(
		do.MustInvoke[*dispatch.Service](di).Input(),
		do.MustInvoke[*audio.Worker](di).Queue(),
		do.MustInvoke[*player.Player](di),
		do.MustInvoke[*ui.Loop](di),
		do.MustInvoke[llm.Generator](di),
		NewHistory(cfg.Chat.HistorySize),
	), nil
}
