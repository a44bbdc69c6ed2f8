package routes

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"portfolio/app/controllers"
	"portfolio/app/middleware"
	"portfolio/app/services"
	"portfolio/app/views"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the router needs.
type Deps struct {
	Posts     *services.PostService
	Preview   *middleware.Preview
	Templates *views.Templates
	Site      views.Site
	Logger    *zap.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(d Deps) *mux.Router {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Preview == nil {
		d.Preview = middleware.NewPreview("", false)
	}

	render := controllers.NewRenderer(d.Templates, d.Site, d.Logger)
	blog := controllers.NewBlogController(d.Posts, render, d.Logger)
	pages := controllers.NewPagesController(d.Posts, render, d.Logger)
	preview := controllers.NewPreviewController(d.Preview, d.Posts, render, d.Logger)
	feeds := controllers.NewFeedController(d.Posts, render)

	router := mux.NewRouter()
	router.Use(d.Preview.Middleware)

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))))

	// Web routes
	router.HandleFunc("/", pages.Home).Methods("GET")
	router.HandleFunc("/about", pages.About).Methods("GET")
	router.HandleFunc("/uses", pages.Uses).Methods("GET")
	router.HandleFunc("/healthz", pages.Health).Methods("GET")
	router.HandleFunc("/feed.xml", feeds.RSS).Methods("GET")
	router.HandleFunc("/sitemap.xml", feeds.Sitemap).Methods("GET")

	posts := router.PathPrefix("/blog").Subrouter()
	posts.HandleFunc("", blog.Index).Methods("GET")
	posts.HandleFunc("/{slug}", blog.Show).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts", blog.Index).Methods("GET")
	api.HandleFunc("/posts/{slug}", blog.Show).Methods("GET")
	api.HandleFunc("/preview", preview.Enable).Methods("GET")
	api.HandleFunc("/exit-preview", preview.Exit).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(pages.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return router
}

// Handler wraps the router with the request-wide middleware, so unmatched
// routes are logged too.
func Handler(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return middleware.RequestID(
		middleware.Logger(logger)(
			middleware.Recoverer(logger)(SetupRoutes(d)),
		),
	)
}

// StartServer listens on addr and serves handler until ctx is cancelled.
func StartServer(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, logger)
}

// Serve serves handler on ln and shuts down gracefully when ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
