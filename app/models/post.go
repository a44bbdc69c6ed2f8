package models

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	// DisplayDateLayout is the human readable date shown next to posts.
	DisplayDateLayout = "January 02, 2006"

	wordsPerMinute = 200
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	validate    = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if p == nil {
		return errors.New("post cannot be nil")
	}
	return validate.Struct(p)
}

// HasDate reports whether the post carries a usable publish instant.
func (p *Post) HasDate() bool {
	return !p.PublishedAt.IsZero()
}

// URL returns the canonical blog path of the post.
func (p *Post) URL() string {
	return "/blog/" + p.Slug
}

// FormattedDate returns the publish date for display, or "" when unknown.
func (p *Post) FormattedDate() string {
	if !p.HasDate() {
		return ""
	}
	return p.PublishedAt.Format(DisplayDateLayout)
}

// ISODate returns the publish instant as RFC 3339, or "" when unknown.
func (p *Post) ISODate() string {
	if !p.HasDate() {
		return ""
	}
	return p.PublishedAt.UTC().Format(time.RFC3339)
}

// BeforeSave fills derived fields that are not part of the source record.
func (p *Post) BeforeSave() {
	p.Slug = strings.TrimSpace(p.Slug)
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	if p.ReadingTime == 0 && p.Content != "" {
		p.ReadingTime = ReadingTime(p.Content)
	}
}

// ReadingTime estimates minutes needed to read text, never less than one.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Slugify turns an arbitrary name into a slug accepted by Validate.
func Slugify(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
