package controllers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/middleware"
	"portfolio/app/services"
)

// PreviewController turns draft preview on and off.
type PreviewController struct {
	preview *middleware.Preview
	posts   *services.PostService
	render  *Renderer
	logger  *zap.Logger
}

func NewPreviewController(preview *middleware.Preview, posts *services.PostService, render *Renderer, logger *zap.Logger) *PreviewController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewController{preview: preview, posts: posts, render: render, logger: logger}
}

// Enable checks the secret, sets the preview cookie and redirects to the
// requested post, or to the listing when no slug is given.
func (pc *PreviewController) Enable(w http.ResponseWriter, r *http.Request) {
	if !pc.preview.Enabled() {
		pc.render.Error(w, r, "Not found", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	if !pc.preview.VerifySecret(q.Get("secret")) {
		pc.logger.Warn("preview rejected", zap.String("remote", r.RemoteAddr))
		pc.render.Error(w, r, "Invalid token", http.StatusUnauthorized)
		return
	}

	target := "/blog"
	if slug := q.Get("slug"); slug != "" {
		post, err := pc.posts.GetPost(r.Context(), slug, true)
		switch {
		case errors.Is(err, content.ErrPostNotFound):
			pc.render.Error(w, r, "Invalid slug", http.StatusUnauthorized)
			return
		case err != nil:
			pc.render.Error(w, r, "Failed to fetch post", statusFor(err))
			return
		}
		target = post.URL()
	}

	pc.preview.SetCookie(w)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// Exit clears the preview cookie.
func (pc *PreviewController) Exit(w http.ResponseWriter, r *http.Request) {
	pc.preview.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}
