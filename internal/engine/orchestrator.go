package engine

import (
	"fmt"
	"sync"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
	"github.com/redhat-data-and-ai/polly/internal/logging"
)

// Run executes one full poll cycle: list the open pull requests and
// process each of them. A listing failure is fatal for the cycle; there
// is no batch without it. Every other failure is isolated into its own
// PR's result.
func (r *Runner) Run() ([]Result, error) {
	prs, err := r.client.ListOpenPullRequests()
	if err != nil {
		return nil, fmt.Errorf("listing open pull requests: %w", err)
	}

	logging.Info("processing %d open pull request(s)", len(prs))
	return r.processAll(prs), nil
}

// processAll fans the pipeline out over the listed pull requests with
// bounded concurrency and gathers the non-empty results. It returns only
// once every dispatched pipeline has finished; result order across PRs is
// unspecified.
func (r *Runner) processAll(prs []bitbucket.PullRequest) []Result {
	if len(prs) == 0 {
		return nil
	}

	workers := r.cfg.Trigger.MaxWorkers
	if len(prs) < workers {
		workers = len(prs)
	}

	jobs := make(chan *bitbucket.PullRequest)

	var mu sync.Mutex
	var results []Result

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pr := range jobs {
				res := r.ProcessPullRequest(pr)
				if res == nil {
					continue
				}
				mu.Lock()
				results = append(results, *res)
				mu.Unlock()
			}
		}()
	}

	for i := range prs {
		jobs <- &prs[i]
	}
	close(jobs)
	wg.Wait()

	return results
}
