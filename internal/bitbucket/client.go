package bitbucket

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/redhat-data-and-ai/polly/internal/config"
)

// Client handles Bitbucket Server API operations
type Client struct {
	config config.BitbucketConfig
	http   *http.Client
}

// createHTTPClient creates an HTTP client with custom TLS configuration
func createHTTPClient(cfg config.BitbucketConfig) (*http.Client, error) {
	transport := &http.Transport{}

	tlsConfig := &tls.Config{}

	if cfg.InsecureTLS {
		tlsConfig.InsecureSkipVerify = true
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate from %s: %w", cfg.CACertPath, err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", cfg.CACertPath)
		}

		tlsConfig.RootCAs = caCertPool
	}

	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, nil
}

// NewClient creates a new Bitbucket API client
func NewClient(cfg config.BitbucketConfig) *Client {
	httpClient, err := createHTTPClient(cfg)
	if err != nil {
		// Fallback to default client if TLS configuration fails
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// apiURL joins the configured base URL with an API path and query
func (c *Client) apiURL(path string, query url.Values) string {
	u := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs an authorized GET and returns the raw response body
func (c *Client) get(fullURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Bitbucket API error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// page is the envelope of a paged Bitbucket resource
type page struct {
	Values        json.RawMessage `json:"values"`
	IsLastPage    bool            `json:"isLastPage"`
	NextPageStart *int            `json:"nextPageStart"`
}

// listPaged drains a paged resource into a single ordered slice, starting
// at offset 0 and following nextPageStart until the server reports the
// last page or stops returning a cursor. Any page failure propagates to
// the caller.
func listPaged[T any](c *Client, path string, query url.Values) ([]T, error) {
	var all []T

	start := 0
	for {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("start", strconv.Itoa(start))

		body, err := c.get(c.apiURL(path, q))
		if err != nil {
			return nil, fmt.Errorf("fetching page of %s: %w", path, err)
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decoding page of %s: %w", path, err)
		}

		var values []T
		if len(p.Values) > 0 {
			if err := json.Unmarshal(p.Values, &values); err != nil {
				return nil, fmt.Errorf("decoding values of %s: %w", path, err)
			}
		}
		all = append(all, values...)

		if p.IsLastPage || p.NextPageStart == nil {
			break
		}
		start = *p.NextPageStart
	}

	return all, nil
}

// ListOpenPullRequests returns all open pull requests authored by the
// token's user, from the dashboard listing
func (c *Client) ListOpenPullRequests() ([]PullRequest, error) {
	query := url.Values{}
	query.Set("state", "open")
	query.Set("role", "author")

	return listPaged[PullRequest](c, "/rest/api/1.0/dashboard/pull-requests", query)
}

// ListActivities returns the full activity feed of a pull request.
// The comments REST resource requires a file path and misses general
// comments, so comments are parsed out of the activity feed instead.
func (c *Client) ListActivities(projectKey, repoSlug string, prID int) ([]Activity, error) {
	path := fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/activities",
		projectKey, repoSlug, prID)

	return listPaged[Activity](c, path, nil)
}

// GetPullRequestState fetches the current state of the pull request at
// the given URL stem ("/projects/.../repos/.../pull-requests/<id>" or the
// "/users/..." form)
func (c *Client) GetPullRequestState(urlStem string) (string, error) {
	body, err := c.get(c.apiURL("/rest/api/1.0"+urlStem, nil))
	if err != nil {
		return "", err
	}

	var pr struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("decoding pull request %s: %w", urlStem, err)
	}

	return pr.State, nil
}

// GetMergeStatus fetches the merge precondition report for a pull request
func (c *Client) GetMergeStatus(projectKey, repoSlug string, prID int) (*MergeStatus, error) {
	path := fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/merge",
		projectKey, repoSlug, prID)

	body, err := c.get(c.apiURL(path, nil))
	if err != nil {
		return nil, err
	}

	status := &MergeStatus{Raw: string(body)}
	if err := json.Unmarshal(body, status); err != nil {
		return nil, fmt.Errorf("decoding merge status: %w", err)
	}

	return status, nil
}

// MergePullRequest executes the merge with the given version token. The
// server applies its default merge strategy; no options are configurable.
func (c *Client) MergePullRequest(projectKey, repoSlug string, prID, version int) error {
	path := fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/merge",
		projectKey, repoSlug, prID)
	query := url.Values{}
	query.Set("version", strconv.Itoa(version))

	req, err := http.NewRequest("POST", c.apiURL(path, query), nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to merge pull request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("merge failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
