package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/polly/internal/config"
	"github.com/redhat-data-and-ai/polly/internal/engine"
	"github.com/redhat-data-and-ai/polly/internal/logging"
)

// CycleRunner runs one full poll cycle
type CycleRunner interface {
	Run() ([]engine.Result, error)
}

// PollHandler triggers a poll cycle on demand, for callers that want a
// merge pass outside the scheduled interval
type PollHandler struct {
	config *config.Config
	runner CycleRunner
}

// PollResponse reports the outcome of one on-demand poll cycle
type PollResponse struct {
	Status  string   `json:"status"`
	Merged  int      `json:"merged"`
	Failed  int      `json:"failed"`
	Results []string `json:"results"`
}

// NewPollHandler creates a new poll handler
func NewPollHandler(cfg *config.Config, runner CycleRunner) *PollHandler {
	return &PollHandler{config: cfg, runner: runner}
}

// HandlePoll runs one poll cycle and reports every produced result
func (h *PollHandler) HandlePoll(c *fiber.Ctx) error {
	logging.Info("on-demand poll cycle requested")

	results, err := h.runner.Run()
	if err != nil {
		logging.Error("poll cycle failed: %v", err)
		return c.Status(502).JSON(fiber.Map{
			"error": "poll cycle failed: " + err.Error(),
		})
	}

	response := PollResponse{
		Status:  "completed",
		Results: make([]string, 0, len(results)),
	}
	for _, res := range results {
		if res.Merged {
			response.Merged++
		} else {
			response.Failed++
		}
		response.Results = append(response.Results, res.Line())
		logging.Info(res.Line())
	}

	logging.Info("poll cycle completed: %d merged, %d failed", response.Merged, response.Failed)

	return c.JSON(response)
}
