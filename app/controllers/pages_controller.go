package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"portfolio/app/middleware"
	"portfolio/app/services"
	"portfolio/app/views"
)

// RecentPosts is how many posts the home page lists.
const RecentPosts = 5

// PagesController serves the static pages.
type PagesController struct {
	posts  *services.PostService
	render *Renderer
	logger *zap.Logger
}

func NewPagesController(posts *services.PostService, render *Renderer, logger *zap.Logger) *PagesController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagesController{posts: posts, render: render, logger: logger}
}

func (pc *PagesController) Home(w http.ResponseWriter, r *http.Request) {
	home, err := pc.posts.Home(r.Context(), middleware.IsPreview(r.Context()), RecentPosts)
	if err != nil {
		pc.logger.Warn("rendering home without posts", zap.Error(err))
		pc.render.HTML(w, r, http.StatusOK, views.PageHome, pc.render.Page(r, "", nil))
		return
	}
	pc.render.HTML(w, r, http.StatusOK, views.PageHome, pc.render.Page(r, "", home))
}

func (pc *PagesController) About(w http.ResponseWriter, r *http.Request) {
	pc.render.HTML(w, r, http.StatusOK, views.PageAbout, pc.render.Page(r, "About", nil))
}

func (pc *PagesController) Uses(w http.ResponseWriter, r *http.Request) {
	page := pc.render.Page(r, "Uses", nil)
	page.Description = "What I'm currently using for coding, watching videos and listening to music."
	pc.render.HTML(w, r, http.StatusOK, views.PageUses, page)
}

// NotFound is the router fallback.
func (pc *PagesController) NotFound(w http.ResponseWriter, r *http.Request) {
	pc.render.Error(w, r, "Not found", http.StatusNotFound)
}

// Health reports liveness.
func (pc *PagesController) Health(w http.ResponseWriter, r *http.Request) {
	pc.render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
