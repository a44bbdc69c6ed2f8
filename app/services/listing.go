package services

import (
	"cmp"
	"slices"
	"strings"

	"portfolio/app/models"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Present sorts posts newest first, keeps those whose title contains query
// (case-insensitive) and projects them for display. An empty query keeps
// every post. The input slice is not modified.
func Present(posts []*models.Post, query string) []models.ListingEntry {
	return Project(FilterPosts(SortPosts(posts), query))
}

// SortPosts returns a copy of posts ordered by publish date descending, then
// slug ascending. Undated posts go last.
func SortPosts(posts []*models.Post) []*models.Post {
	sorted := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	slices.SortStableFunc(sorted, comparePosts)
	return sorted
}

func comparePosts(a, b *models.Post) int {
	switch {
	case a.HasDate() && !b.HasDate():
		return -1
	case !a.HasDate() && b.HasDate():
		return 1
	}
	if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.Slug, b.Slug)
}

// FilterPosts keeps posts whose lowercased title contains the lowercased
// query. The query is matched as given.
func FilterPosts(posts []*models.Post, query string) []*models.Post {
	if query == "" {
		return posts
	}
	needle := strings.ToLower(query)
	filtered := []*models.Post{}
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Project maps posts to listing entries, preserving order.
func Project(posts []*models.Post) []models.ListingEntry {
	entries := make([]models.ListingEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, models.ListingEntry{
			Slug:          p.Slug,
			Title:         p.Title,
			Excerpt:       p.Excerpt,
			PublishedAt:   p.ISODate(),
			FormattedDate: p.FormattedDate(),
			URL:           p.URL(),
		})
	}
	return entries
}

// Paginate returns one page of entries. page starts at 1; out of range pages
// are empty.
func Paginate(entries []models.ListingEntry, page, perPage int) ([]models.ListingEntry, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	if page-1 >= pageCount(len(entries), perPage) {
		return []models.ListingEntry{}, page, perPage
	}
	offset := (page - 1) * perPage
	end := min(offset+perPage, len(entries))
	return entries[offset:end], page, perPage
}

func pageCount(total, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Featured picks the posts named by slugs, in the order given. Unknown slugs
// are ignored.
func Featured(posts []*models.Post, slugs []string) []*models.Post {
	bySlug := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		if p != nil {
			bySlug[p.Slug] = p
		}
	}
	featured := []*models.Post{}
	for _, slug := range slugs {
		if p, ok := bySlug[slug]; ok {
			featured = append(featured, p)
			delete(bySlug, slug)
		}
	}
	return featured
}
