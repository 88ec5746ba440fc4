package server

import (
	"context"
	"log/slog"

	"bertraco/app/config"
	"bertraco/app/service/dispatch"
	"bertraco/app/service/engine"
	"bertraco/app/service/ui"

	"github.com/gofiber/fiber/v2"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/samber/oops"
)

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	listen string
	app    *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	dispatcher := do.MustInvoke[*dispatch.Service](di)
	loop := do.MustInvoke[*ui.Loop](di)

	var mcpServer *mcpserver.MCPServer
	if cfg.MCP.Enabled {
		mcpServer = NewMCPServer(dispatcher, loop)
	}

	return &Service{
		listen: cfg.HTTP.Listen,
		app:    NewApp(dispatcher, do.MustInvoke[*engine.Service](di), loop, mcpServer),
	}, nil
}

// Run serves until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	slog.Info("HTTP dispatcher listening", "addr", s.listen)

	if err := s.app.Listen(s.listen); err != nil {
		return oops.In("server").With("addr", s.listen).Wrapf(err, "failed to serve")
	}

	return nil
}

func (s *Service) Shutdown() error {
	return s.app.Shutdown()
}
