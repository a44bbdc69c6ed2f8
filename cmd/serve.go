package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/middleware"
	"portfolio/app/routes"
	"portfolio/app/services"
	"portfolio/app/views"
	"portfolio/internal/config"
)

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	deps, closeSource, err := buildDeps(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer closeSource()

	c.logger.Info("starting portfolio",
		zap.String("env", c.cfg.Env),
		zap.String("addr", c.cfg.Server.Addr),
		zap.Bool("preview", deps.Preview.Enabled()),
	)
	return routes.StartServer(ctx, c.cfg.Server.Addr, routes.Handler(deps), c.logger)
}

// buildDeps wires the router's collaborators from cfg.
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (routes.Deps, func(), error) {
	templates, err := views.Load()
	if err != nil {
		return routes.Deps{}, nil, err
	}

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		return routes.Deps{}, nil, err
	}
	if cached, ok := source.(*content.CachedSource); ok && cfg.Content.Source == config.SourceFiles {
		go watchContent(ctx, cfg.Content.Dir, cached, logger)
	}

	return routes.Deps{
		Posts:     services.NewPostService(source, logger, cfg.Content.Featured),
		Preview:   middleware.NewPreview(cfg.Preview.SecretHash, cfg.Preview.Secure),
		Templates: templates,
		Site:      siteFromConfig(cfg.Site),
		Logger:    logger,
	}, closeSource, nil
}

// watchContent drops cached snapshots whenever the markdown directory changes.
func watchContent(ctx context.Context, dir string, cache *content.CachedSource, logger *zap.Logger) {
	purge := func() {
		if err := cache.Purge(context.Background()); err != nil {
			logger.Warn("failed to purge snapshot cache", zap.Error(err))
			return
		}
		logger.Info("content changed, snapshot cache purged", zap.String("dir", dir))
	}
	if err := content.WatchDir(ctx, dir, 0, purge, logger); err != nil {
		logger.Warn("content watcher stopped", zap.Error(err))
	}
}

func siteFromConfig(s config.SiteConfig) views.Site {
	return views.Site{
		Name:        s.Name,
		Role:        s.Role,
		Description: s.Description,
		URL:         s.URL,
		Twitter:     s.Twitter,
		GitHub:      s.GitHub,
		LinkedIn:    s.LinkedIn,
		IssuesURL:   s.IssuesURL,
	}
}
