package content

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when the backing source cannot be read at all.
	ErrSourceUnavailable = errors.New("content source unavailable")
	// ErrMalformedRecord marks a record that does not satisfy the Post shape.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidDate marks a record whose publish date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrPostNotFound is returned when a slug is absent from a snapshot.
	ErrPostNotFound = errors.New("post not found")
)

// RecordError describes a single record that was skipped or degraded while
// building a snapshot.
type RecordError struct {
	Index  int    `json:"index"`
	Origin string `json:"origin,omitempty"`
	Slug   string `json:"slug,omitempty"`
	Err    error  `json:"-"`
}

func (e *RecordError) Error() string {
	name := e.Slug
	if name == "" {
		name = e.Origin
	}
	if name == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Index, name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Skipped reports whether the record was dropped from the snapshot.
func (e *RecordError) Skipped() bool {
	return !errors.Is(e.Err, ErrInvalidDate)
}

func unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrSourceUnavailable, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
