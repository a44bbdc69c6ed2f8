package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postFile(title, date string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("---\ntitle: " + title + "\npublishedAt: '" + date + "'\n---\nBody of " + title + "\n")}
}

func TestFileSourceFetchPosts(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md":             postFile("A", "2023-01-01"),
		"b.mdx":            postFile("B", "2023-06-01"),
		"draft.md":         {Data: []byte("---\ntitle: Draft\npublishedAt: '2023-02-01'\ndraft: true\n---\nwip\n")},
		"no-date.md":       postFile("No Date", "garbage"),
		"broken.md":        {Data: []byte("no front matter at all")},
		"notes.txt":        {Data: []byte("ignored")},
		".hidden.md":       postFile("Hidden", "2023-01-01"),
		"nested/inner.md":  postFile("Inner", "2023-01-01"),
		"untitled-post.md": {Data: []byte("---\npublishedAt: '2023-01-01'\n---\nbody\n")},
	}
	src := NewFileSourceFS(fsys, nil)
	assert.Equal(t, "files", src.Name())

	t.Run("published", func(t *testing.T) {
		snap, err := src.FetchPosts(context.Background(), false)
		require.NoError(t, err)

		var slugs []string
		for _, p := range snap.Posts {
			slugs = append(slugs, p.Slug)
		}
		assert.ElementsMatch(t, []string{"a", "b", "no-date"}, slugs)

		undated, err := snap.Find("no-date")
		require.NoError(t, err)
		assert.False(t, undated.HasDate())

		assert.Len(t, snap.Issues, 3)
		assert.Equal(t, 2, snap.Skipped())
	})

	t.Run("preview includes drafts", func(t *testing.T) {
		snap, err := src.FetchPosts(context.Background(), true)
		require.NoError(t, err)
		_, err = snap.Find("draft")
		assert.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.FetchPosts(ctx, false)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileSourceMissingDirectory(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing"), nil)
	_, err := src.FetchPosts(context.Background(), false)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFileSourceEmptyDirectory(t *testing.T) {
	src := NewFileSource(t.TempDir(), nil)
	snap, err := src.FetchPosts(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, snap.Posts)
	assert.Empty(t, snap.Issues)
}

func TestFileSourceOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello-world.md"),
		[]byte("---\ntitle: Hello World\npublishedAt: '2023-01-01'\n---\nhi\n"), 0o644))

	snap, err := NewFileSource(dir, nil).FetchPosts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "/blog/hello-world", snap.Posts[0].URL())
}
