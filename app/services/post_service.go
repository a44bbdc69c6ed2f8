package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/models"
)

// FeedSize is the number of posts published in the RSS feed.
const FeedSize = 20

// PostService handles the blog read paths on top of a content source
type PostService struct {
	source   content.Source
	featured []string
	logger   *zap.Logger
}

// ListOptions selects a page of the listing.
type ListOptions struct {
	Query   string
	Page    int
	PerPage int
	Preview bool
}

// Listing is one page of presented posts.
type Listing struct {
	Entries  []models.ListingEntry `json:"posts"`
	Featured []models.ListingEntry `json:"featured,omitempty"`
	Total    int                   `json:"total"`
	All      int                   `json:"all"`
	Page     int                   `json:"page"`
	PerPage  int                   `json:"perPage"`
	Query    string                `json:"query,omitempty"`
	Skipped  int                   `json:"skipped"`
}

// Home holds what the landing page shows.
type Home struct {
	Featured []models.ListingEntry
	Recent   []models.ListingEntry
	Total    int
}

// NewPostService creates a new PostService
func NewPostService(source content.Source, logger *zap.Logger, featured []string) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{source: source, featured: featured, logger: logger}
}

// Snapshot fetches the current posts and logs every record issue.
func (s *PostService) Snapshot(ctx context.Context, preview bool) (*content.Snapshot, error) {
	snap, err := s.source.FetchPosts(ctx, preview)
	if err != nil {
		s.logger.Error("content fetch failed",
			zap.String("source", s.source.Name()),
			zap.Bool("preview", preview),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	for _, issue := range snap.Issues {
		s.logger.Warn("content record issue",
			zap.String("source", s.source.Name()),
			zap.Int("index", issue.Index),
			zap.String("origin", issue.Origin),
			zap.String("slug", issue.Slug),
			zap.Bool("skipped", issue.Skipped()),
			zap.Error(issue.Err),
		)
	}
	return snap, nil
}

// ListPosts presents the filtered listing and returns the requested page
func (s *PostService) ListPosts(ctx context.Context, opts ListOptions) (*Listing, error) {
	snap, err := s.Snapshot(ctx, opts.Preview)
	if err != nil {
		return nil, err
	}

	entries := Present(snap.Posts, opts.Query)
	page, pageNum, perPage := Paginate(entries, opts.Page, opts.PerPage)

	listing := &Listing{
		Entries: page,
		Total:   len(entries),
		All:     len(snap.Posts),
		Page:    pageNum,
		PerPage: perPage,
		Query:   opts.Query,
		Skipped: snap.Skipped(),
	}
	if strings.TrimSpace(opts.Query) == "" {
		listing.Featured = Project(Featured(snap.Posts, s.featured))
	}
	return listing, nil
}

// GetPost retrieves a post by slug
func (s *PostService) GetPost(ctx context.Context, slug string, preview bool) (*models.Post, error) {
	snap, err := s.Snapshot(ctx, preview)
	if err != nil {
		return nil, err
	}
	return snap.Find(slug)
}

// Home returns the featured posts and the n most recent ones.
func (s *PostService) Home(ctx context.Context, preview bool, n int) (*Home, error) {
	snap, err := s.Snapshot(ctx, preview)
	if err != nil {
		return nil, err
	}

	recent := Present(snap.Posts, "")
	total := len(recent)
	if n > 0 && len(recent) > n {
		recent = recent[:n]
	}
	return &Home{
		Featured: Project(Featured(snap.Posts, s.featured)),
		Recent:   recent,
		Total:    total,
	}, nil
}

// Published returns every published post newest first, for feeds and the sitemap.
func (s *PostService) Published(ctx context.Context) ([]*models.Post, error) {
	snap, err := s.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return SortPosts(snap.Posts), nil
}

// HasNext reports whether another page follows this one.
func (l *Listing) HasNext() bool {
	return l.Page < pageCount(l.Total, l.PerPage)
}

func (l *Listing) NextPage() int { return l.Page + 1 }

func (l *Listing) PrevPage() int { return max(l.Page-1, 1) }
