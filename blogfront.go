// Package blogfront serves a static-file blog with Echo and templ: a manifest
// of posts (posts.json) plus one markdown document per post (pages/<file>).
// It provides the post list with tag filtering and search, post pages, a JSON
// search API, RSS and sitemap out of the box.
//
// Callers may replace any page through the ViewFuncs struct; blogfront
// handles loading, filtering, theme persistence and middleware.
package blogfront

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/debounce"
	"github.com/eringen/blogfront/views"
)

// ViewFuncs holds the components the handlers render. Nil fields fall back
// to the built-in views.
type ViewFuncs struct {
	Home        func(views.HomeData) templ.Component
	PostList    func(views.HomeData) templ.Component
	Post        func(views.PostData) templ.Component
	NotFound    func(views.ErrorData) templ.Component
	ServerError func(views.ErrorData) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.PostList == nil {
		v.PostList = views.PostList
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App wires together the content loader, cache, handlers, middleware and
// views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Cache  *content.Cache
	Views  ViewFuncs
	Logger *slog.Logger

	loader        content.Loader
	apiLimiter    *RateLimiter
	sessionSecret []byte
	customRoutes  []func(*App)
	initialized   bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Init validates the configuration and builds the loader, cache, middleware
// and routes. Start calls it; it is exported so the App can be served by an
// external server or exercised through a.Echo directly.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := PrepareConfig(&a.Config); err != nil {
		return fmt.Errorf("blogfront: %w", err)
	}

	if a.loader == nil {
		l, err := a.Config.NewLoader(a.Logger)
		if err != nil {
			return fmt.Errorf("blogfront: init content: %w", err)
		}
		a.loader = l
	}
	a.Cache = content.NewCache(a.loader, a.Config.ManifestCacheTTL)
	a.apiLimiter = NewRateLimiter(a.Config.APIRateLimit, a.Config.APIRateWindow)

	a.sessionSecret = []byte(a.Config.SessionSecret)
	if len(a.sessionSecret) == 0 {
		a.sessionSecret = make([]byte, 32)
		if _, err := rand.Read(a.sessionSecret); err != nil {
			return fmt.Errorf("blogfront: generate session secret: %w", err)
		}
		a.Logger.Warn("session_secret not set; theme cookies will not survive a restart")
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the server down gracefully. With Config.Watch set and a local content
// directory, file changes invalidate the manifest cache.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.Close()

	a.Logger.Info("configuration loaded",
		slog.String("addr", a.Config.Addr),
		slog.String("base_path", a.Config.BasePath),
		slog.String("content", a.contentSource()),
		slog.Bool("watch", a.Config.Watch))

	g, gCtx := errgroup.WithContext(ctx)

	if a.Config.Watch && a.Config.ContentURL == "" {
		g.Go(func() error {
			return content.Watch(gCtx, a.Config.ContentDir, debounce.New(250*time.Millisecond), a.Logger, func() {
				a.Cache.Invalidate()
				a.Logger.Info("content changed; manifest cache invalidated")
			})
		})
	}

	g.Go(func() error {
		a.Logger.Info("starting HTTP server", slog.String("address", a.Config.Addr))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			a.Logger.Info("context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error("application error", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}

func (a *App) contentSource() string {
	if a.Config.ContentURL != "" {
		return a.Config.ContentURL
	}
	return a.Config.ContentDir
}

func (a *App) setupRoutes() {
	e := a.Echo
	g := e.Group(a.prefix())

	// Embedded assets are served ahead of the user's static directory.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	for _, name := range []string{"blogfront.js", "blogfront.css"} {
		g.FileFS("/public/"+name, name, embeddedFS)
	}
	g.Static("/public", a.Config.StaticDir)

	g.GET("/robots.txt", a.handleRobots)
	g.GET("/sitemap.xml", a.handleSitemap)
	g.GET("/feed.xml", a.handleFeed)

	g.GET("/", a.handleHome)
	g.GET("/posts/*", a.handlePost)
	g.GET("/post.html", a.handleLegacyPost)
	g.GET("/api/posts", a.handleAPIPosts, a.apiLimiter.Middleware)
	g.POST("/theme/", a.handleTheme)
}

// prefix is the route group prefix for the base path: "" or "/blog".
// With AutoBasePath requests are rewritten to the root before routing.
func (a *App) prefix() string {
	if a.Config.BasePath == AutoBasePath {
		return ""
	}
	return strings.TrimSuffix(a.Config.BasePath, "/")
}

// Close releases background resources. Call it when the App is not started
// through Start.
func (a *App) Close() error {
	if a.apiLimiter != nil {
		a.apiLimiter.Stop()
	}
	return nil
}
