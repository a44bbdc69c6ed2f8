package content

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"portfolio/app/models"
)

const frontMatterDelimiter = "---"

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
	),
)

// frontMatter accepts both the "publishedAt"/"summary" and the older
// "date"/"excerpt" key names.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	PublishedAt string   `yaml:"publishedAt"`
	Date        string   `yaml:"date"`
	Summary     string   `yaml:"summary"`
	Excerpt     string   `yaml:"excerpt"`
	Image       string   `yaml:"image"`
	CoverImage  string   `yaml:"coverImage"`
	Tags        []string `yaml:"tags"`
	Draft       bool     `yaml:"draft"`
}

// RenderMarkdown converts markdown text to HTML.
func RenderMarkdown(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ParseMarkdownPost parses a markdown document with YAML front matter. The
// file name stem is used as slug unless front matter overrides it. When only
// the date is unusable the post is returned together with an error wrapping
// ErrInvalidDate.
func ParseMarkdownPost(name string, raw []byte) (*models.Post, error) {
	var meta frontMatter
	body, err := parseFrontMatter(raw, &meta)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = models.Slugify(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	}

	html, err := RenderMarkdown(string(body))
	if err != nil {
		return nil, malformed("%v", err)
	}

	post := &models.Post{
		Slug:       slug,
		Title:      meta.Title,
		Excerpt:    firstNonEmpty(meta.Summary, meta.Excerpt),
		Content:    strings.TrimSpace(string(body)),
		HTML:       html,
		CoverImage: firstNonEmpty(meta.Image, meta.CoverImage),
		Tags:       meta.Tags,
		Draft:      meta.Draft,
	}
	post.BeforeSave()

	rawDate := firstNonEmpty(meta.PublishedAt, meta.Date)
	published, err := ParseDate(rawDate)
	if err != nil {
		return post, fmt.Errorf("%w: %q", ErrInvalidDate, rawDate)
	}
	post.PublishedAt = published
	return post, nil
}

// yamlFrontMatter is the only accepted front matter format.
var yamlFrontMatter = frontmatter.NewFormat(frontMatterDelimiter, frontMatterDelimiter, yaml.Unmarshal)

func parseFrontMatter(raw []byte, meta *frontMatter) ([]byte, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")
	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		return nil, malformed("missing front matter")
	}
	if !strings.Contains(text[len(frontMatterDelimiter):], "\n"+frontMatterDelimiter) {
		return nil, malformed("unterminated front matter")
	}

	body, err := frontmatter.MustParse(strings.NewReader(text), meta, yamlFrontMatter)
	switch {
	case errors.Is(err, frontmatter.ErrNotFound):
		return nil, malformed("missing front matter")
	case err != nil:
		return nil, malformed("front matter: %v", err)
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
