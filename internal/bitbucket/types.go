package bitbucket

// User identifies a Bitbucket user
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Project identifies a Bitbucket project
type Project struct {
	Key string `json:"key"`
}

// Repository identifies a repository within a project
type Repository struct {
	Slug    string  `json:"slug"`
	Project Project `json:"project"`
}

// Ref is a pull request source or target reference
type Ref struct {
	ID         string     `json:"id"`
	Repository Repository `json:"repository"`
}

// Link is a single hypermedia link
type Link struct {
	Href string `json:"href"`
}

// Links holds the hypermedia links of a resource
type Links struct {
	Self []Link `json:"self"`
}

// Participant wraps a user in a pull request role
type Participant struct {
	User User `json:"user"`
}

// PullRequest is one entry from the dashboard pull request listing.
// The version field is the optimistic-concurrency token required by the
// merge call; it is captured at listing time and not refreshed within a
// poll cycle.
type PullRequest struct {
	ID          int         `json:"id"`
	Version     int         `json:"version"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	State       string      `json:"state"`
	Author      Participant `json:"author"`
	ToRef       Ref         `json:"toRef"`
	Links       Links       `json:"links"`
}

// ProjectKey returns the key of the project the PR targets
func (pr *PullRequest) ProjectKey() string {
	return pr.ToRef.Repository.Project.Key
}

// RepoSlug returns the slug of the repository the PR targets
func (pr *PullRequest) RepoSlug() string {
	return pr.ToRef.Repository.Slug
}

// URL returns the canonical self link of the PR, or "" if absent
func (pr *PullRequest) URL() string {
	if len(pr.Links.Self) == 0 {
		return ""
	}
	return pr.Links.Self[0].Href
}

// AuthorName returns the username of the PR author
func (pr *PullRequest) AuthorName() string {
	return pr.Author.User.Name
}

// Comment is a pull request comment with its nested reply tree
type Comment struct {
	ID       int       `json:"id"`
	Text     string    `json:"text"`
	Author   User      `json:"author"`
	Comments []Comment `json:"comments"`
}

// Activity is one entry from a pull request's activity feed. Only
// entries with action "COMMENTED" carry a comment.
type Activity struct {
	ID      int      `json:"id"`
	Action  string   `json:"action"`
	Comment *Comment `json:"comment,omitempty"`
}

// ActionCommented is the activity action carrying a comment tree
const ActionCommented = "COMMENTED"

// StateMerged is the pull request state reported once a PR is merged
const StateMerged = "MERGED"

// MergeStatus is the server's merge precondition report. Raw preserves
// the response body verbatim; when CanMerge is false it is the server's
// authoritative explanation (vetoes, builds, conflicts) and must not be
// reinterpreted.
type MergeStatus struct {
	CanMerge bool   `json:"canMerge"`
	Raw      string `json:"-"`
}
