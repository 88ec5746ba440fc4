package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bertraco/app/client/llm"
	"bertraco/app/client/player"
	"bertraco/app/client/voice"
	"bertraco/app/config"
	"bertraco/app/service/audio"
	"bertraco/app/service/chat"
	"bertraco/app/service/console"
	"bertraco/app/service/dispatch"
	"bertraco/app/service/engine"
	"bertraco/app/service/server"
	"bertraco/app/service/ui"
	"bertraco/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

const configEnv = "BERTRACO_CONFIG"

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	configPath := os.Getenv(configEnv)
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, voice.New)
	do.Provide(di, player.New)
	do.Provide(di, llm.New)
	do.Provide(di, ui.New)
	do.Provide(di, dispatch.New)
	do.Provide(di, audio.New)
	do.Provide(di, chat.New)
	do.Provide(di, engine.New)
	do.Provide(di, server.New)
	do.Provide(di, console.New)

	slog.Info("Service started", "config", configPath)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	if cfg.HTTP.Listen != "" {
		go func() {
			if err := do.MustInvoke[*server.Service](di).Run(appCtx); err != nil {
				slog.Error("HTTP dispatcher failed", "error", err)
			}
		}()
	}

	if !cfg.Console.Disabled {
		go func() {
			if err := do.MustInvoke[*console.Service](di).Run(appCtx); err != nil {
				slog.Error("Console dispatcher failed", "error", err)
			}
		}()
	}

	if err = do.MustInvoke[*engine.Service](di).Run(appCtx); err != nil {
		slog.Error("Engine stopped with error", "error", err)
	}
}
