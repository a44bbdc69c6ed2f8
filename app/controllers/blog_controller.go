package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/middleware"
	"portfolio/app/services"
	"portfolio/app/views"
)

// BlogController handles HTTP requests for blog posts
type BlogController struct {
	posts  *services.PostService
	render *Renderer
	logger *zap.Logger
}

// NewBlogController creates a new BlogController
func NewBlogController(posts *services.PostService, render *Renderer, logger *zap.Logger) *BlogController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogController{posts: posts, render: render, logger: logger}
}

// Index handles listing posts, filtered by the q parameter
func (bc *BlogController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := services.ListOptions{
		Query:   q.Get("q"),
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), 10),
		Preview: middleware.IsPreview(r.Context()),
	}

	listing, err := bc.posts.ListPosts(r.Context(), opts)
	if wantsJSON(r) {
		if err != nil {
			bc.render.Error(w, r, "Failed to fetch posts", statusFor(err))
			return
		}
		bc.render.JSON(w, http.StatusOK, listing)
		return
	}

	// The page still renders when the source is down; the template shows a notice.
	if err != nil {
		bc.logger.Warn("rendering blog without posts", zap.Error(err))
		bc.render.HTML(w, r, http.StatusOK, views.PageBlog, bc.render.Page(r, "Blog", nil))
		return
	}
	bc.render.HTML(w, r, http.StatusOK, views.PageBlog, bc.render.Page(r, "Blog", listing))
}

// Show handles displaying a single post
func (bc *BlogController) Show(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	post, err := bc.posts.GetPost(r.Context(), slug, middleware.IsPreview(r.Context()))
	if err != nil {
		if errors.Is(err, content.ErrPostNotFound) {
			bc.render.Error(w, r, "Post not found", http.StatusNotFound)
			return
		}
		bc.render.Error(w, r, "Failed to fetch post", statusFor(err))
		return
	}

	if wantsJSON(r) {
		bc.render.JSON(w, http.StatusOK, post)
		return
	}
	page := bc.render.Page(r, post.Title, post)
	page.Description = post.Excerpt
	bc.render.HTML(w, r, http.StatusOK, views.PagePost, page)
}

func statusFor(err error) int {
	if errors.Is(err, content.ErrSourceUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
