package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
	"github.com/redhat-data-and-ai/polly/internal/config"
	"github.com/redhat-data-and-ai/polly/internal/logging"
	"github.com/redhat-data-and-ai/polly/internal/trigger"
)

// Runner orchestrates poll cycles. It holds only read-only state and is
// safe to share across the worker pool.
type Runner struct {
	cfg     *config.Config
	client  bitbucket.BitbucketClient
	grammar *trigger.Grammar
}

// NewRunner creates a runner from configuration and a Bitbucket client
func NewRunner(cfg *config.Config, client bitbucket.BitbucketClient) *Runner {
	return &Runner{
		cfg:     cfg,
		client:  client,
		grammar: trigger.NewGrammar(cfg.Trigger.Prefix),
	}
}

// ProcessPullRequest runs the per-PR pipeline: match the description
// against the grammar, fall back to the comment thread, and dispatch the
// winning directive. It returns nil when no directive was found anywhere.
// The description is always checked first so that the comparatively
// expensive activity fetch is skipped whenever possible.
func (r *Runner) ProcessPullRequest(pr *bitbucket.PullRequest) *Result {
	if d := r.grammar.Match([]string{pr.Description}); d != nil {
		logging.PRInfo(pr.URL(), "trigger directive found in description")
		return r.dispatch(pr, d)
	}

	texts, err := r.commentTexts(pr)
	if err != nil {
		// Recovered: this PR reports a failure, the batch continues.
		logging.PRError(pr.URL(), "comment fetch failed", err)
		return failure(pr.URL(), err)
	}

	if d := r.grammar.Match(texts); d != nil {
		logging.PRInfo(pr.URL(), "trigger directive found in comments")
		return r.dispatch(pr, d)
	}

	return nil
}

// commentTexts fetches the PR's activity feed and flattens its comment
// trees into ordered text blobs
func (r *Runner) commentTexts(pr *bitbucket.PullRequest) ([]string, error) {
	activities, err := r.client.ListActivities(pr.ProjectKey(), pr.RepoSlug(), pr.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}

	filter := trigger.Filter{
		AuthorOnly: r.cfg.Trigger.AuthorOnly,
		Author:     pr.AuthorName(),
	}
	return trigger.CommentTexts(activities, filter), nil
}

// dispatch routes a directive to the merge executor, going through the
// dependency resolver first for conditional merges
func (r *Runner) dispatch(pr *bitbucket.PullRequest, d *trigger.Directive) *Result {
	if d.Kind == trigger.MergeAfter {
		if err := resolveDependency(r.client, d.Target); err != nil {
			logging.PRWarn(pr.URL(), "dependency not satisfied",
				zap.String("dependency", d.Target))
			return failure(pr.URL(), err)
		}
	}

	if err := executeMerge(r.client, pr); err != nil {
		logging.PRError(pr.URL(), "merge failed", err)
		return failure(pr.URL(), err)
	}

	return success(pr.URL())
}
