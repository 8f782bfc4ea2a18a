package bitbucket

// BitbucketClient is an interface for Bitbucket Server API operations
// This interface allows for easy mocking in tests
type BitbucketClient interface {
	// Listing
	ListOpenPullRequests() ([]PullRequest, error)
	ListActivities(projectKey, repoSlug string, prID int) ([]Activity, error)

	// Dependency state
	GetPullRequestState(urlStem string) (string, error)

	// Merging
	GetMergeStatus(projectKey, repoSlug string, prID int) (*MergeStatus, error)
	MergePullRequest(projectKey, repoSlug string, prID, version int) error
}

// Verify that Client implements BitbucketClient interface
var _ BitbucketClient = (*Client)(nil)
