package trigger

import (
	"github.com/redhat-data-and-ai/polly/internal/bitbucket"
)

// Filter restricts which comment authors may trigger a directive
type Filter struct {
	AuthorOnly bool
	Author     string // PR author username, compared when AuthorOnly is set
}

// include reports whether a comment by the given author passes the filter
func (f Filter) include(author string) bool {
	return !f.AuthorOnly || author == f.Author
}

// CommentTexts flattens the comment trees of an activity feed into an
// ordered sequence of text blobs. Roots come before their replies and
// reply trees are walked depth-first with an explicit stack, so reply
// chains of any depth cannot overflow the call stack.
func CommentTexts(activities []bitbucket.Activity, filter Filter) []string {
	var texts []string

	for i := range activities {
		activity := &activities[i]
		if activity.Action != bitbucket.ActionCommented || activity.Comment == nil {
			continue
		}

		stack := []*bitbucket.Comment{activity.Comment}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if filter.include(node.Author.Name) {
				texts = append(texts, node.Text)
			}

			// Push replies in reverse so they pop in server order.
			for j := len(node.Comments) - 1; j >= 0; j-- {
				stack = append(stack, &node.Comments[j])
			}
		}
	}

	return texts
}
