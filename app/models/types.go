package models

import "time"

// Post represents a single blog entry as produced by a content source.
type Post struct {
	Slug        string    `json:"slug" yaml:"slug" validate:"required,slug,max=200"`
	Title       string    `json:"title" yaml:"title" validate:"required,max=200"`
	PublishedAt time.Time `json:"publishedAt" yaml:"publishedAt"`
	Excerpt     string    `json:"excerpt,omitempty" yaml:"summary,omitempty" validate:"max=1000"`
	Content     string    `json:"content,omitempty" yaml:"-"`
	HTML        string    `json:"html,omitempty" yaml:"-"`
	CoverImage  string    `json:"coverImage,omitempty" yaml:"image,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive,required"`
	Draft       bool      `json:"draft,omitempty" yaml:"draft,omitempty"`
	ReadingTime int       `json:"readingTime,omitempty" yaml:"-" validate:"gte=0"`
}

// ListingEntry is the display tuple rendered for each post in a listing.
type ListingEntry struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Excerpt       string `json:"excerpt,omitempty"`
	PublishedAt   string `json:"publishedAt"`
	FormattedDate string `json:"formattedDate"`
	URL           string `json:"url"`
}
