package engine

import "fmt"

// Result is the outcome of processing one pull request. Exactly one is
// produced per PR whose text carried a directive; PRs without a directive
// produce nothing.
type Result struct {
	URL    string `json:"url"`
	Merged bool   `json:"merged"`
	Reason string `json:"reason,omitempty"`
}

// Line renders the result in the process-level reporting format
func (r Result) Line() string {
	if r.Merged {
		return fmt.Sprintf("Merged %s", r.URL)
	}
	return fmt.Sprintf("Failed to merge %s : %s", r.URL, r.Reason)
}

// success builds a merged result for a PR URL
func success(url string) *Result {
	return &Result{URL: url, Merged: true}
}

// failure converts a per-request error into that PR's failing result
func failure(url string, err error) *Result {
	return &Result{URL: url, Merged: false, Reason: err.Error()}
}
