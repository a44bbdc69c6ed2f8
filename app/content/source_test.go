package content

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"portfolio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "2023-01-01", want: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{raw: " 2023-06-01 ", want: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2023-06-01T10:30:00Z", want: time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2023-06-01T10:30:00", want: time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2023-06-01 10:30:00", want: time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2023-06-01T10:30:00.5-03:00", want: time.Date(2023, 6, 1, 13, 30, 0, 500000000, time.UTC)},
		{raw: "not-a-date", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "2023-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestSnapshotBuilder(t *testing.T) {
	dated := func(slug string) *models.Post {
		return &models.Post{Slug: slug, Title: slug, PublishedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	}

	t.Run("skips malformed and duplicate records", func(t *testing.T) {
		b := newSnapshotBuilder(false)
		b.add(0, "a.md", dated("a"), nil)
		b.add(1, "b.md", &models.Post{Slug: "b"}, nil)
		b.add(2, "a-copy.md", dated("a"), nil)
		b.add(3, "c.md", nil, malformed("broken"))
		b.add(4, "d.md", nil, nil)
		snap := b.build()

		require.Len(t, snap.Posts, 1)
		assert.Equal(t, "a", snap.Posts[0].Slug)
		require.Len(t, snap.Issues, 4)
		assert.Equal(t, 4, snap.Skipped())
		for _, issue := range snap.Issues {
			assert.ErrorIs(t, issue, ErrMalformedRecord)
		}
	})

	t.Run("keeps records with invalid dates", func(t *testing.T) {
		b := newSnapshotBuilder(false)
		post := dated("undated")
		b.add(0, "undated.md", post, fmt.Errorf("%w: %q", ErrInvalidDate, "not-a-date"))
		snap := b.build()

		require.Len(t, snap.Posts, 1)
		assert.False(t, snap.Posts[0].HasDate())
		require.Len(t, snap.Issues, 1)
		assert.ErrorIs(t, snap.Issues[0], ErrInvalidDate)
		assert.Equal(t, 0, snap.Skipped())
	})

	t.Run("drafts only in preview", func(t *testing.T) {
		draft := dated("draft")
		draft.Draft = true

		b := newSnapshotBuilder(false)
		b.add(0, "", draft, nil)
		assert.Empty(t, b.build().Posts)
		assert.Empty(t, b.build().Issues)

		b = newSnapshotBuilder(true)
		b.add(0, "", draft, nil)
		assert.Len(t, b.build().Posts, 1)
	})
}

func TestSnapshotFind(t *testing.T) {
	snap := &Snapshot{Posts: []*models.Post{{Slug: "a", Title: "A"}}}

	post, err := snap.Find("a")
	require.NoError(t, err)
	assert.Equal(t, "A", post.Title)

	_, err = snap.Find("b")
	assert.True(t, errors.Is(err, ErrPostNotFound))
}

func TestRecordError(t *testing.T) {
	err := &RecordError{Index: 2, Origin: "x.md", Err: ErrMalformedRecord}
	assert.Equal(t, "record 2 (x.md): malformed record", err.Error())

	err = &RecordError{Index: 2, Origin: "x.md", Slug: "x", Err: ErrInvalidDate}
	assert.Equal(t, "record 2 (x): invalid date", err.Error())
	assert.False(t, err.Skipped())

	err = &RecordError{Index: 0, Err: ErrMalformedRecord}
	assert.Equal(t, "record 0: malformed record", err.Error())
}
