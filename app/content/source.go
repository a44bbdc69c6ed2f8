// Package content retrieves blog posts from the configured backing store and
// turns untyped records into validated models.Post values.
package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio/app/models"
)

// Source yields an unordered snapshot of posts. When preview is set, drafts
// are included.
type Source interface {
	Name() string
	FetchPosts(ctx context.Context, preview bool) (*Snapshot, error)
}

// Snapshot is the immutable result of one fetch.
type Snapshot struct {
	Posts     []*models.Post `json:"posts"`
	Issues    []*RecordError `json:"issues,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Find returns the post with the given slug.
func (s *Snapshot) Find(slug string) (*models.Post, error) {
	for _, p := range s.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrPostNotFound
}

// Skipped returns the number of records dropped while building the snapshot.
func (s *Snapshot) Skipped() int {
	n := 0
	for _, issue := range s.Issues {
		if issue.Skipped() {
			n++
		}
	}
	return n
}

// snapshotBuilder applies the shared record policy: malformed records and
// duplicate slugs are skipped, records with bad dates are kept undated, and
// drafts are dropped outside preview.
type snapshotBuilder struct {
	preview bool
	snap    *Snapshot
	seen    map[string]struct{}
}

func newSnapshotBuilder(preview bool) *snapshotBuilder {
	return &snapshotBuilder{
		preview: preview,
		snap: &Snapshot{
			Posts:     []*models.Post{},
			FetchedAt: time.Now().UTC(),
		},
		seen: make(map[string]struct{}),
	}
}

// add records the outcome of parsing one record. parseErr may wrap
// ErrInvalidDate, in which case post is still kept.
func (b *snapshotBuilder) add(index int, origin string, post *models.Post, parseErr error) {
	slug := ""
	if post != nil {
		slug = post.Slug
	}
	if parseErr != nil && !errors.Is(parseErr, ErrInvalidDate) {
		b.issue(index, origin, slug, parseErr)
		return
	}
	if post == nil {
		b.issue(index, origin, "", malformed("empty record"))
		return
	}
	if err := post.Validate(); err != nil {
		b.issue(index, origin, slug, malformed("%v", err))
		return
	}
	if _, dup := b.seen[post.Slug]; dup {
		b.issue(index, origin, slug, malformed("duplicate slug %q", post.Slug))
		return
	}
	if post.Draft && !b.preview {
		return
	}
	b.seen[post.Slug] = struct{}{}
	if parseErr != nil {
		post.PublishedAt = time.Time{}
		b.issue(index, origin, slug, parseErr)
	}
	b.snap.Posts = append(b.snap.Posts, post)
}

func (b *snapshotBuilder) issue(index int, origin, slug string, err error) {
	b.snap.Issues = append(b.snap.Issues, &RecordError{
		Index:  index,
		Origin: origin,
		Slug:   slug,
		Err:    err,
	})
}

func (b *snapshotBuilder) build() *Snapshot {
	return b.snap
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats found in front matter and CMS payloads.
// All layouts without a zone are read as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
