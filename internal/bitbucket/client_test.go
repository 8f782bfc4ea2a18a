package bitbucket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/redhat-data-and-ai/polly/internal/config"
)

func testConfig(baseURL string) config.BitbucketConfig {
	return config.BitbucketConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}
}

func TestNewClient(t *testing.T) {
	cfg := testConfig("https://bitbucket.example.com")

	client := NewClient(cfg)

	assert.NotNil(t, client)
	assert.Equal(t, cfg.BaseURL, client.config.BaseURL)
	assert.Equal(t, cfg.Token, client.config.Token)
	assert.NotNil(t, client.http)
	assert.Equal(t, cfg.Timeout, client.http.Timeout)
}

func TestListOpenPullRequests_Paging(t *testing.T) {
	// Two pages: 25 values with a continuation cursor, then 5 more on the
	// last page. The combined listing must arrive in exactly two calls.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/rest/api/1.0/dashboard/pull-requests", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "author", r.URL.Query().Get("role"))

		start := r.URL.Query().Get("start")
		w.Header().Set("Content-Type", "application/json")

		switch start {
		case "0":
			values := make([]map[string]interface{}, 25)
			for i := range values {
				values[i] = map[string]interface{}{"id": i + 1, "version": 0}
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"values":        values,
				"isLastPage":    false,
				"nextPageStart": 25,
			})
		case "25":
			values := make([]map[string]interface{}, 5)
			for i := range values {
				values[i] = map[string]interface{}{"id": 25 + i + 1, "version": 0}
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"values":     values,
				"isLastPage": true,
			})
		default:
			t.Errorf("unexpected start offset %q", start)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	prs, err := client.ListOpenPullRequests()

	assert.NoError(t, err)
	assert.Len(t, prs, 30)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, prs[0].ID)
	assert.Equal(t, 30, prs[29].ID)
}

func TestListOpenPullRequests_StopsWithoutCursor(t *testing.T) {
	// A page that is not marked last but omits nextPageStart still ends
	// the drain.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"values":     []map[string]interface{}{{"id": 1}},
			"isLastPage": false,
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	prs, err := client.ListOpenPullRequests()

	assert.NoError(t, err)
	assert.Len(t, prs, 1)
	assert.Equal(t, 1, calls)
}

func TestListOpenPullRequests_PageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		_, _ = w.Write([]byte(`{"errors": [{"message": "Authentication failed"}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	prs, err := client.ListOpenPullRequests()

	assert.Error(t, err)
	assert.Nil(t, prs)
	assert.Contains(t, err.Error(), "Bitbucket API error 401")
}

func TestListActivities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos/widget/pull-requests/42/activities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{
			"values": [
				{"id": 1, "action": "COMMENTED", "comment": {"id": 10, "text": "looks good", "comments": []}},
				{"id": 2, "action": "APPROVED"}
			],
			"isLastPage": true
		}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	activities, err := client.ListActivities("PROJ", "widget", 42)

	assert.NoError(t, err)
	assert.Len(t, activities, 2)
	assert.Equal(t, ActionCommented, activities[0].Action)
	assert.Equal(t, "looks good", activities[0].Comment.Text)
	assert.Nil(t, activities[1].Comment)
}

func TestGetPullRequestState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects/A/repos/b/pull-requests/5", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id": 5, "state": "MERGED"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	state, err := client.GetPullRequestState("/projects/A/repos/b/pull-requests/5")

	assert.NoError(t, err)
	assert.Equal(t, StateMerged, state)
}

func TestGetMergeStatus_PreservesRawPayload(t *testing.T) {
	payload := `{"canMerge": false, "vetoes": [{"summaryMessage": "Not all required reviewers have approved"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos/widget/pull-requests/42/merge", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, payload)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	status, err := client.GetMergeStatus("PROJ", "widget", 42)

	assert.NoError(t, err)
	assert.False(t, status.CanMerge)
	assert.Equal(t, payload, status.Raw)
}

func TestMergePullRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos/widget/pull-requests/42/merge", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("version"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id": 42, "state": "MERGED"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.MergePullRequest("PROJ", "widget", 42, 7)

	assert.NoError(t, err)
}

func TestMergePullRequest_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(409)
		_, _ = w.Write([]byte(`{"errors": [{"message": "Pull request is out of date"}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.MergePullRequest("PROJ", "widget", 42, 7)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "merge failed with status 409")
	assert.Contains(t, err.Error(), "out of date")
}
