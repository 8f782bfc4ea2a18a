package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
	"github.com/redhat-data-and-ai/polly/internal/config"
	"github.com/redhat-data-and-ai/polly/internal/engine"
	"github.com/redhat-data-and-ai/polly/internal/handler"
	"github.com/redhat-data-and-ai/polly/internal/logging"
)

// newServeCmd builds the daemon command: a scheduled poll loop plus a
// small HTTP surface for health checks and on-demand poll triggers.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the poll loop with an HTTP health/trigger surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			client := bitbucket.NewClient(cfg.Bitbucket)
			runner := engine.NewRunner(cfg, client)

			app := buildApp(cfg, runner)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				logging.Info("received signal %v, shutting down", sig)
				cancel()
				_ = app.Shutdown()
			}()

			go runPollLoop(ctx, cfg, runner)

			logging.Info("polly serving on port %s, polling every %s, trigger %s",
				cfg.Server.Port, cfg.Server.PollInterval, cfg.TriggerMode())

			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				return err
			}
			return nil
		},
	}
}

// buildApp assembles the Fiber app with its middleware and routes
func buildApp(cfg *config.Config, runner handler.CycleRunner) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Polly",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"

			// Fiber routing errors (404, 405, ...) carry their own code
			// and must keep it; only server-side failures are masked.
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			if code >= fiber.StatusInternalServerError {
				logging.Error("request error: %v", err)
			}

			return c.Status(code).JSON(fiber.Map{
				"error": message,
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	healthHandler := handler.NewHealthHandler(cfg)
	pollHandler := handler.NewPollHandler(cfg, runner)

	app.Get("/health", healthHandler.HandleHealth)
	app.Post("/poll", pollHandler.HandlePoll)

	return app
}

// runPollLoop runs one cycle immediately, then on every tick until the
// context is cancelled. A failed cycle is logged and waits for the next
// tick; state on the server is re-read from scratch each time, so cycles
// are safe to re-run against unchanged or already-merged pull requests.
func runPollLoop(ctx context.Context, cfg *config.Config, runner *engine.Runner) {
	runCycle(runner)

	ticker := time.NewTicker(cfg.Server.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("poll loop stopped")
			return
		case <-ticker.C:
			runCycle(runner)
		}
	}
}

// runCycle executes a single cycle and reports its results
func runCycle(runner *engine.Runner) {
	results, err := runner.Run()
	if err != nil {
		logging.Error("poll cycle failed: %v", err)
		return
	}

	for _, res := range results {
		if res.Merged {
			logging.Info(res.Line())
		} else {
			logging.Warn(res.Line())
		}
	}
}
