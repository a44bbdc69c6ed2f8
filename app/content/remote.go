package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfolio/app/models"
)

const (
	// DefaultIndexQuery selects every post with the fields a listing needs.
	DefaultIndexQuery = `*[_type == "post"] | order(date desc, _updatedAt desc) {_id, _originalId, title, date, excerpt, coverImage, tags, content, "slug": slug.current}`

	defaultAPIVersion    = "2021-10-21"
	defaultRemoteTimeout = 10 * time.Second
	maxResponseBytes     = 16 << 20
	draftIDPrefix        = "drafts."
)

// RemoteConfig configures access to the headless CMS query API.
type RemoteConfig struct {
	BaseURL    string
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	Query      string
	Timeout    time.Duration
}

// RemoteSource fetches posts from a headless CMS query endpoint.
type RemoteSource struct {
	cfg    RemoteConfig
	client *http.Client
	logger *zap.Logger
}

type queryEnvelope struct {
	Result []json.RawMessage `json:"result"`
}

type remoteRecord struct {
	ID          string     `json:"_id"`
	OriginalID  string     `json:"_originalId"`
	Slug        remoteSlug `json:"slug"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	PublishedAt string     `json:"publishedAt"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage"`
	Tags        []string   `json:"tags"`
}

// remoteSlug accepts either a plain string or the {"current": "..."} object
// the CMS stores slugs as.
type remoteSlug string

func (s *remoteSlug) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Current string `json:"current"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*s = remoteSlug(obj.Current)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = remoteSlug(str)
	return nil
}

// NewRemoteSource creates a RemoteSource. A nil client gets one with the
// configured timeout.
func NewRemoteSource(cfg RemoteConfig, client *http.Client, logger *zap.Logger) *RemoteSource {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Query == "" {
		cfg.Query = DefaultIndexQuery
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRemoteTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteSource{cfg: cfg, client: client, logger: logger}
}

func (s *RemoteSource) Name() string { return "remote" }

// Endpoint returns the query URL for the given preview mode.
func (s *RemoteSource) Endpoint(preview bool) (string, error) {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		if s.cfg.ProjectID == "" {
			return "", fmt.Errorf("remote source needs a base url or project id")
		}
		base = fmt.Sprintf("https://%s.api.sanity.io", s.cfg.ProjectID)
	}
	if s.cfg.Dataset == "" {
		return "", fmt.Errorf("remote source needs a dataset")
	}

	u, err := url.Parse(fmt.Sprintf("%s/v%s/data/query/%s", base, strings.TrimPrefix(s.cfg.APIVersion, "v"), url.PathEscape(s.cfg.Dataset)))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("query", s.cfg.Query)
	if preview && s.cfg.Token != "" {
		q.Set("perspective", "previewDrafts")
	} else {
		q.Set("perspective", "published")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPosts performs one query. Transport errors, non-2xx statuses and
// undecodable envelopes fail the whole fetch; bad records are skipped.
func (s *RemoteSource) FetchPosts(ctx context.Context, preview bool) (*Snapshot, error) {
	endpoint, err := s.Endpoint(preview)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	if preview && s.cfg.Token == "" {
		s.logger.Warn("preview requested without a cms token, serving published content")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, unavailable(s.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var envelope queryEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&envelope); err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("decode response: %w", err))
	}

	shadowed := draftShadowed(envelope.Result)
	b := newSnapshotBuilder(preview)
	for i, raw := range envelope.Result {
		post, id, err := decodeRemoteRecord(raw)
		if preview && shadowed[id] {
			continue
		}
		b.add(i, "", post, err)
	}

	snap := b.build()
	s.logger.Debug("remote content loaded",
		zap.Int("records", len(envelope.Result)),
		zap.Int("posts", len(snap.Posts)),
		zap.Int("issues", len(snap.Issues)),
	)
	return snap, nil
}

// documentID returns the id a record was stored under. The previewDrafts
// perspective serves drafts under their published _id and keeps the draft id
// in _originalId.
func (r *remoteRecord) documentID() string {
	return firstNonEmpty(r.OriginalID, r.ID)
}

// draftShadowed returns the published ids that also have a draft copy in
// result. Older API versions return both copies in preview.
func draftShadowed(result []json.RawMessage) map[string]bool {
	shadowed := map[string]bool{}
	for _, raw := range result {
		var rec remoteRecord
		if json.Unmarshal(raw, &rec) != nil {
			continue
		}
		if id, ok := strings.CutPrefix(rec.documentID(), draftIDPrefix); ok && id != "" {
			shadowed[id] = true
		}
	}
	return shadowed
}

// decodeRemoteRecord returns the post and the id it was stored under.
func decodeRemoteRecord(raw json.RawMessage) (*models.Post, string, error) {
	var rec remoteRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, "", malformed("decode: %v", err)
	}
	id := rec.documentID()

	html, err := RenderMarkdown(rec.Content)
	if err != nil {
		return nil, id, malformed("%v", err)
	}

	post := &models.Post{
		Slug:       string(rec.Slug),
		Title:      rec.Title,
		Excerpt:    rec.Excerpt,
		Content:    rec.Content,
		HTML:       html,
		CoverImage: rec.CoverImage,
		Tags:       rec.Tags,
		Draft:      strings.HasPrefix(id, draftIDPrefix),
	}
	post.BeforeSave()

	rawDate := firstNonEmpty(rec.PublishedAt, rec.Date)
	published, err := ParseDate(rawDate)
	if err != nil {
		return post, id, fmt.Errorf("%w: %q", ErrInvalidDate, rawDate)
	}
	post.PublishedAt = published
	return post, id, nil
}
