package domain

import (
	"strings"
	"time"
)

// SlugSeparator joins ancestor slugs to a comment's local segment.
const SlugSeparator = "/"

// slugTimeLayout renders timestamps as UTC ISO-8601 with milliseconds, which
// sorts lexically in time order.
const slugTimeLayout = "2006-01-02T15:04:05.000Z"

// collisionMarker separates a local segment from the comment id appended when
// two comments would otherwise share a slug.
const collisionMarker = "~"

// Comment is a remark on a model, optionally replying to another comment.
// Slug is a materialized path: every descendant's slug starts with the
// ancestor's slug followed by SlugSeparator.
type Comment struct {
	Document
	ModelID    string    `json:"modelId"`
	Author     string    `json:"author"` // username
	Text       string    `json:"text"`
	Markdown   string    `json:"markdown,omitempty"` // Markdown rendering of HTML text
	PostedDate time.Time `json:"postedDate"`
	ParentID   string    `json:"parentId,omitempty"`
	Slug       string    `json:"slug"`
}

// IsReply reports whether the comment has a parent.
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// Depth is the number of ancestors encoded in the slug.
func (c *Comment) Depth() int {
	return strings.Count(c.Slug, SlugSeparator)
}

// IsDescendantOf reports whether the comment sits below the given slug.
func (c *Comment) IsDescendantOf(ancestorSlug string) bool {
	return strings.HasPrefix(c.Slug, SubtreePrefix(ancestorSlug))
}

// LocalSegment is a comment's own contribution to its slug: the author
// followed by the posting time.
func LocalSegment(author string, posted time.Time) string {
	return author + posted.UTC().Format(slugTimeLayout)
}

// StrengthenSegment makes a local segment unique by appending the comment id.
func StrengthenSegment(segment, commentID string) string {
	return segment + collisionMarker + commentID
}

// ChildSlug places a local segment under a parent slug. An empty parent slug
// yields a root slug.
func ChildSlug(parentSlug, segment string) string {
	if parentSlug == "" {
		return segment
	}
	return parentSlug + SlugSeparator + segment
}

// SubtreePrefix is the string prefix shared by every descendant of slug.
func SubtreePrefix(slug string) string {
	return slug + SlugSeparator
}

// CommentUpdate is a single typed mutation of a Comment document.
type CommentUpdate interface {
	applyComment(c *Comment) bool
}

// SetText replaces the comment body and its Markdown rendering.
type SetText struct {
	Text     string
	Markdown string
}

func (s SetText) applyComment(c *Comment) bool {
	if c.Text == s.Text && c.Markdown == s.Markdown {
		return false
	}
	c.Text = s.Text
	c.Markdown = s.Markdown
	return true
}

// Apply runs the updates in order and reports whether the comment changed.
func (c *Comment) Apply(updates ...CommentUpdate) bool {
	changed := false
	for _, up := range updates {
		if up.applyComment(c) {
			changed = true
		}
	}
	if changed {
		c.Touch()
	}
	return changed
}
