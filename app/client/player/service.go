package player

import (
	"log/slog"
	"strings"

	"bertraco/app/config"

	"github.com/jonboulle/clockwork"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Player)(nil)

func New(di *do.Injector) (*Player, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.Player.Command == "" {
		slog.Info("Playing silently, no player command configured")
		return NewSilent(clockwork.NewRealClock()), nil
	}

	slog.Info("Using player command", "cmd", cfg.Player.Command+" "+strings.Join(cfg.Player.Args, " "))

	return NewCommand(cfg.Player.Command, cfg.Player.Args...), nil
}

func (p *Player) Shutdown() error {
	p.StopAll()

	return nil
}
