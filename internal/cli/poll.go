package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
	"github.com/redhat-data-and-ai/polly/internal/config"
	"github.com/redhat-data-and-ai/polly/internal/engine"
	"github.com/redhat-data-and-ai/polly/internal/logging"
)

// newPollCmd builds the one-shot poll command, suitable for cron. Only
// config and listing failures exit non-zero; per-PR failures are reported
// as result lines and the process still succeeds.
func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			client := bitbucket.NewClient(cfg.Bitbucket)
			runner := engine.NewRunner(cfg, client)

			logging.Info("starting poll cycle, trigger %s", cfg.TriggerMode())

			results, err := runner.Run()
			if err != nil {
				return err
			}

			for _, res := range results {
				if res.Merged {
					logging.Info(res.Line())
				} else {
					logging.Warn(res.Line())
				}
			}

			logging.Info("poll cycle finished with %d result(s)", len(results))
			return nil
		},
	}
}
