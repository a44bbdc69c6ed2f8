package controllers

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"portfolio/app/models"
	"portfolio/app/services"
)

// FeedController serves the RSS feed and the sitemap.
type FeedController struct {
	posts  *services.PostService
	render *Renderer
}

func NewFeedController(posts *services.PostService, render *Renderer) *FeedController {
	return &FeedController{posts: posts, render: render}
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
	Description string `xml:"description,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// RSS renders the latest published posts.
func (fc *FeedController) RSS(w http.ResponseWriter, r *http.Request) {
	posts, err := fc.posts.Published(r.Context())
	if err != nil {
		http.Error(w, "feed unavailable", statusFor(err))
		return
	}
	if len(posts) > services.FeedSize {
		posts = posts[:services.FeedSize]
	}

	site := fc.render.Site()
	base := strings.TrimRight(site.URL, "/")
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.Name,
			Link:          base,
			Description:   site.Description,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}
	for _, p := range posts {
		item := rssItem{
			Title:       p.Title,
			Link:        base + p.URL(),
			GUID:        base + p.URL(),
			Description: p.Excerpt,
		}
		if p.HasDate() {
			item.PubDate = p.PublishedAt.UTC().Format(time.RFC1123Z)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	writeXML(w, "application/rss+xml; charset=utf-8", feed)
}

// Sitemap lists the static pages and every published post.
func (fc *FeedController) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := fc.posts.Published(r.Context())
	if err != nil {
		http.Error(w, "sitemap unavailable", statusFor(err))
		return
	}

	base := strings.TrimRight(fc.render.Site().URL, "/")
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range []string{"/", "/about", "/uses", "/blog"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + path, ChangeFreq: "monthly", Priority: 0.5})
	}
	set.URLs[0].ChangeFreq, set.URLs[0].Priority = "daily", 1.0
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + p.URL(),
			LastMod:    lastMod(p),
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}

	writeXML(w, "application/xml; charset=utf-8", set)
}

func lastMod(p *models.Post) string {
	if !p.HasDate() {
		return ""
	}
	return p.PublishedAt.UTC().Format("2006-01-02")
}

func writeXML(w http.ResponseWriter, contentType string, v any) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "xml encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(out)
}
