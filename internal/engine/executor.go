package engine

import (
	"errors"
	"fmt"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
)

// executeMerge runs the two-phase merge protocol for one pull request:
// fetch the merge precondition report, then POST the merge with the
// version token captured at listing time. No retry happens here; a failed
// merge is retried only by the next poll cycle against a fresh listing.
func executeMerge(client bitbucket.BitbucketClient, pr *bitbucket.PullRequest) error {
	status, err := client.GetMergeStatus(pr.ProjectKey(), pr.RepoSlug(), pr.ID)
	if err != nil {
		return fmt.Errorf("error fetching merge status: %w", err)
	}

	if !status.CanMerge {
		// The raw payload is the server's authoritative explanation
		// (vetoes, builds, approvals) and is reported verbatim.
		return errors.New(status.Raw)
	}

	if err := client.MergePullRequest(pr.ProjectKey(), pr.RepoSlug(), pr.ID, pr.Version); err != nil {
		return err
	}

	return nil
}
