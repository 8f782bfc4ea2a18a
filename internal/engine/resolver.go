package engine

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
)

// dependencyStemPattern validates a merge-after reference and captures the
// canonical PR stem, discarding any trailing sub-path such as /overview or
// /diff view suffixes.
var dependencyStemPattern = regexp.MustCompile(`^(/(?:projects|users)/[^/]+/repos/[^/]+/pull-requests/\d+)`)

// resolveDependency validates a captured merge-after URL and checks that
// the referenced pull request is merged. A syntactically invalid reference
// fails immediately without any network call. The dependency itself is
// never merged here; success only clears the caller to merge the origin PR.
func resolveDependency(client bitbucket.BitbucketClient, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid pr_url %s", rawURL)
	}

	m := dependencyStemPattern.FindStringSubmatch(parsed.Path)
	if m == nil {
		return fmt.Errorf("invalid pr_url %s", rawURL)
	}
	stem := m[1]

	state, err := client.GetPullRequestState(stem)
	if err != nil {
		// Ephemeral fetch failure; treated as not merged.
		return fmt.Errorf("dependency %s unreachable", rawURL)
	}

	if state != bitbucket.StateMerged {
		return fmt.Errorf("%s not merged yet!", rawURL)
	}

	return nil
}
