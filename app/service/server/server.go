package server

import (
	"context"
	"errors"
	"time"

	"bertraco/app/service/engine"
	"bertraco/app/service/ui"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const snapshotTimeout = 2 * time.Second

type Submitter interface {
	Submit(question string) bool
}

type StatusReporter interface {
	Status() engine.Status
}

type Snapshotter interface {
	Snapshot(ctx context.Context) (ui.Snapshot, error)
}

type questionRequest struct {
	Question string `json:"question"`
}

type questionResponse struct {
	Accepted bool `json:"accepted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewApp builds the HTTP dispatcher. mcpServer is mounted on /mcp when not nil.
func NewApp(submitter Submitter, status StatusReporter, snapshots Snapshotter, mcpServer *mcpserver.MCPServer) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}

			return c.Status(code).JSON(errorResponse{Error: err.Error()})
		},
	})

	api := app.Group("/api")

	api.Post("/questions", func(c *fiber.Ctx) error {
		var req questionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if !submitter.Submit(req.Question) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "question rejected")
		}

		return c.Status(fiber.StatusAccepted).JSON(questionResponse{Accepted: true})
	})

	api.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(status.Status())
	})

	api.Get("/face", func(c *fiber.Ctx) error {
		snapshot, err := takeSnapshot(c.UserContext(), snapshots)
		if err != nil {
			return err
		}

		return c.JSON(snapshot.Frame)
	})

	api.Get("/transcript", func(c *fiber.Ctx) error {
		snapshot, err := takeSnapshot(c.UserContext(), snapshots)
		if err != nil {
			return err
		}

		return c.SendString(snapshot.Transcript)
	})

	if mcpServer != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpserver.NewStreamableHTTPServer(mcpServer, mcpserver.WithStateLess(true))))
	}

	return app
}

func takeSnapshot(ctx context.Context, snapshots Snapshotter) (ui.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snapshot, err := snapshots.Snapshot(ctx)
	if err != nil {
		return ui.Snapshot{}, fiber.NewError(fiber.StatusServiceUnavailable, "ui is not responding")
	}

	return snapshot, nil
}
