package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdownPost(t *testing.T) {
	t.Run("full front matter", func(t *testing.T) {
		raw := []byte("---\ntitle: 'Performance no React'\npublishedAt: '2023-06-01'\nsummary: Memoização e reconciliação\nimage: /static/images/react.png\ntags: [react, performance]\n---\n\n# Intro\n\nSome *markdown* here.\n")

		post, err := ParseMarkdownPost("performance-no-react.mdx", raw)
		require.NoError(t, err)
		assert.Equal(t, "performance-no-react", post.Slug)
		assert.Equal(t, "Performance no React", post.Title)
		assert.Equal(t, "Memoização e reconciliação", post.Excerpt)
		assert.Equal(t, "/static/images/react.png", post.CoverImage)
		assert.Equal(t, []string{"react", "performance"}, post.Tags)
		assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), post.PublishedAt)
		assert.Contains(t, post.HTML, `<h1 id="intro">Intro</h1>`)
		assert.Contains(t, post.HTML, "<em>markdown</em>")
		assert.Equal(t, 1, post.ReadingTime)
		assert.False(t, post.Draft)
	})

	t.Run("legacy keys and explicit slug", func(t *testing.T) {
		raw := []byte("---\ntitle: JavaScript moderno\nslug: javascript-moderno\ndate: 2022-03-04T10:00:00Z\nexcerpt: Básico\ndraft: true\n---\nbody\n")

		post, err := ParseMarkdownPost("whatever.md", raw)
		require.NoError(t, err)
		assert.Equal(t, "javascript-moderno", post.Slug)
		assert.Equal(t, "Básico", post.Excerpt)
		assert.True(t, post.Draft)
		assert.Equal(t, 2022, post.PublishedAt.Year())
	})

	t.Run("unquoted yaml date", func(t *testing.T) {
		raw := []byte("---\ntitle: Dated\npublishedAt: 2023-01-01\n---\nbody\n")

		post, err := ParseMarkdownPost("dated.md", raw)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), post.PublishedAt)
	})

	t.Run("windows line endings", func(t *testing.T) {
		raw := []byte("---\r\ntitle: CRLF\r\npublishedAt: '2023-01-01'\r\n---\r\nbody\r\n")

		post, err := ParseMarkdownPost("crlf.md", raw)
		require.NoError(t, err)
		assert.Equal(t, "CRLF", post.Title)
		assert.Equal(t, "body", post.Content)
	})

	t.Run("invalid date keeps the post", func(t *testing.T) {
		raw := []byte("---\ntitle: Broken Date\npublishedAt: not-a-date\n---\nbody\n")

		post, err := ParseMarkdownPost("broken-date.md", raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDate)
		require.NotNil(t, post)
		assert.Equal(t, "broken-date", post.Slug)
		assert.False(t, post.HasDate())
	})

	t.Run("missing front matter", func(t *testing.T) {
		_, err := ParseMarkdownPost("plain.md", []byte("# Just markdown\n"))
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("unterminated front matter", func(t *testing.T) {
		_, err := ParseMarkdownPost("open.md", []byte("---\ntitle: Open\n"))
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseMarkdownPost("bad.md", []byte("---\ntitle: [unclosed\n---\nbody\n"))
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("")
	require.NoError(t, err)
	assert.Equal(t, "", html)

	html, err = RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}
