package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"acesoftware.in/marketing-web/internal/cms"
	"acesoftware.in/marketing-web/internal/config"
	"acesoftware.in/marketing-web/internal/i18n"
	mw "acesoftware.in/marketing-web/internal/middleware"
	"acesoftware.in/marketing-web/internal/observability"
	"acesoftware.in/marketing-web/internal/product"
)

const shutdownGrace = 10 * time.Second

func main() {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file consulted after the process environment")
	flag.Parse()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "web: invalid configuration: %v\n", verr.Fields())
		} else {
			fmt.Fprintf(os.Stderr, "web: %v\n", err)
		}
		os.Exit(2)
	}

	logger, err := observability.NewLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "web: init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("web exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	// open gallery streams end when shutdown begins
	srv.RegisterOnShutdown(a.closeStreams)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", cfg.Dev),
			zap.String("api_base_url", cfg.API.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// app carries the dependencies shared by every handler.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	bundle   *i18n.Bundle
	products *product.Client
	content  *cms.Client
	tmpl     *templateSet

	streams   chan struct{}
	closeOnce sync.Once
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return nil, fmt.Errorf("load i18n: %w", err)
	}
	products, err := product.NewClient(cfg.API.BaseURL,
		product.WithTimeout(cfg.API.FetchTimeout),
		product.WithLogger(logger.Named("product")),
	)
	if err != nil {
		return nil, err
	}
	content := cms.NewClient(cfg.Paths.Content)
	content.SetFallbackLang(cfg.Site.DefaultLocale)
	if cfg.Dev {
		content.SetCacheDuration(0)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		bundle:   bundle,
		products: products,
		content:  content,
		streams:  make(chan struct{}),
	}
	a.tmpl, err = newTemplateSet(cfg.Paths.Templates, cfg.Dev, a.templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return a, nil
}

// closeStreams ends every open gallery stream. It runs once, from Shutdown.
func (a *app) closeStreams() {
	a.closeOnce.Do(func() { close(a.streams) })
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(mw.HTMX)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.VaryLocale)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(a.cfg.Paths.Public, "assets"), a.cfg.Dev))

	// Streams outlive the request timeout and must not be compressed.
	r.Get("/products/{id}/gallery/stream", a.GalleryStreamHandler)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(a.cfg.Server.RequestTimeout))

		r.Get("/", a.HomeHandler)
		r.Get("/about", a.AboutHandler)
		r.Get("/contact", a.ContactHandler)
		r.Get("/products/{id}", a.ProductHandler)
		r.Get("/products/{id}/detail", a.ProductDetailFrag)

		// role placeholders
		r.Get("/admin", a.RoleHandler("admin"))
		r.Get("/user", a.RoleHandler("user"))
	})

	r.NotFound(a.NotFoundHandler)
	return r
}
