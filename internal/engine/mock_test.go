package engine

import (
	"fmt"
	"sync"

	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
	"github.com/redhat-data-and-ai/polly/internal/config"
)

// mockClient is a configurable in-memory BitbucketClient that records
// call counts so tests can assert which endpoints were reached.
type mockClient struct {
	mu sync.Mutex

	listOpenFn       func() ([]bitbucket.PullRequest, error)
	listActivitiesFn func(projectKey, repoSlug string, prID int) ([]bitbucket.Activity, error)
	getStateFn       func(urlStem string) (string, error)
	getMergeStatusFn func(projectKey, repoSlug string, prID int) (*bitbucket.MergeStatus, error)
	mergeFn          func(projectKey, repoSlug string, prID, version int) error

	activityCalls int
	stateCalls    int
	statusCalls   int
	mergeCalls    int
}

var _ bitbucket.BitbucketClient = (*mockClient)(nil)

func (m *mockClient) ListOpenPullRequests() ([]bitbucket.PullRequest, error) {
	if m.listOpenFn != nil {
		return m.listOpenFn()
	}
	return nil, nil
}

func (m *mockClient) ListActivities(projectKey, repoSlug string, prID int) ([]bitbucket.Activity, error) {
	m.count(&m.activityCalls)
	if m.listActivitiesFn != nil {
		return m.listActivitiesFn(projectKey, repoSlug, prID)
	}
	return nil, nil
}

func (m *mockClient) GetPullRequestState(urlStem string) (string, error) {
	m.count(&m.stateCalls)
	if m.getStateFn != nil {
		return m.getStateFn(urlStem)
	}
	return "OPEN", nil
}

func (m *mockClient) GetMergeStatus(projectKey, repoSlug string, prID int) (*bitbucket.MergeStatus, error) {
	m.count(&m.statusCalls)
	if m.getMergeStatusFn != nil {
		return m.getMergeStatusFn(projectKey, repoSlug, prID)
	}
	return &bitbucket.MergeStatus{CanMerge: true, Raw: `{"canMerge": true}`}, nil
}

func (m *mockClient) MergePullRequest(projectKey, repoSlug string, prID, version int) error {
	m.count(&m.mergeCalls)
	if m.mergeFn != nil {
		return m.mergeFn(projectKey, repoSlug, prID, version)
	}
	return nil
}

func (m *mockClient) count(field *int) {
	m.mu.Lock()
	*field++
	m.mu.Unlock()
}

func (m *mockClient) calls() (activities, state, status, merge int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activityCalls, m.stateCalls, m.statusCalls, m.mergeCalls
}

func testRunnerConfig() *config.Config {
	return &config.Config{
		Trigger: config.TriggerConfig{
			Prefix:     "@polly",
			MaxWorkers: 4,
		},
	}
}

func makePR(id int, description string) bitbucket.PullRequest {
	pr := bitbucket.PullRequest{
		ID:          id,
		Version:     id * 10,
		Description: description,
		State:       "OPEN",
	}
	pr.Author.User.Name = "jdoe"
	pr.ToRef.Repository.Slug = "widget"
	pr.ToRef.Repository.Project.Key = "PROJ"
	pr.Links.Self = []bitbucket.Link{{
		Href: fmt.Sprintf("https://bitbucket.example.com/projects/PROJ/repos/widget/pull-requests/%d", id),
	}}
	return pr
}

func commentActivity(text string) bitbucket.Activity {
	return bitbucket.Activity{
		Action:  bitbucket.ActionCommented,
		Comment: &bitbucket.Comment{Text: text, Author: bitbucket.User{Name: "jdoe"}},
	}
}
