package blogfront

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/theme"
)

const (
	sessionName = "blogfront"
	basePathKey = "blogfront.base_path"

	clientHintHeader = "Sec-CH-Prefers-Color-Scheme"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())
	if a.Config.BasePath == AutoBasePath {
		e.Pre(autoBasePath)
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				level = slog.LevelError
			}
			a.Logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(a.relPath(c), "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' https://giscus.app; style-src 'self' 'unsafe-inline' https://giscus.app; img-src 'self' https: data:; font-src 'self'; connect-src 'self'; frame-src https://giscus.app",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := a.relPath(c)
			return strings.HasPrefix(p, "/public") ||
				strings.HasPrefix(p, "/api/") ||
				p == "/post.html" ||
				p == "/sitemap.xml" || p == "/feed.xml" || p == "/robots.txt"
		},
	}))

	e.Use(a.cacheControlMiddleware)
	e.Use(clientHintMiddleware)
}

// autoBasePath strips a /blog/ prefix before routing and records the base
// path the request arrived under.
func autoBasePath(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		base := content.DetectBasePath(req.URL.Path)
		c.Set(basePathKey, base)
		if base != "/" {
			req.URL.Path = "/" + strings.TrimPrefix(req.URL.Path, base)
			if req.URL.RawPath != "" {
				req.URL.RawPath = "/" + strings.TrimPrefix(req.URL.RawPath, base)
			}
		}
		return next(c)
	}
}

// basePath is the base path the current request is served under.
func (a *App) basePath(c echo.Context) string {
	if a.Config.BasePath != AutoBasePath {
		return a.Config.BasePath
	}
	if base, ok := c.Get(basePathKey).(string); ok {
		return base
	}
	return "/"
}

// relPath is the request path with the base path prefix removed.
func (a *App) relPath(c echo.Context) string {
	p := c.Request().URL.Path
	if prefix := a.prefix(); prefix != "" {
		p = strings.TrimPrefix(p, prefix)
	}
	if p == "" {
		return "/"
	}
	return p
}

func (a *App) cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := a.relPath(c)
		h := c.Response().Header()
		switch {
		case strings.HasPrefix(p, "/public/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case p == "/sitemap.xml" || p == "/feed.xml" || p == "/robots.txt":
			h.Set("Cache-Control", "public, max-age=86400")
		default:
			// Pages carry the theme and CSRF token of one visitor.
			h.Set("Cache-Control", "private, no-cache")
		}
		return next(c)
	}
}

// clientHintMiddleware asks browsers for their colour scheme preference so
// the first render can match it.
func clientHintMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Accept-CH", clientHintHeader)
		h.Set("Critical-CH", clientHintHeader)
		h.Add(echo.HeaderVary, clientHintHeader)
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore(a.sessionSecret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 365,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// sessionTheme keeps the theme preference in the session cookie.
type sessionTheme struct {
	c echo.Context
}

func (s sessionTheme) Load() (theme.Theme, bool) {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return "", false
	}
	v, _ := sess.Values[theme.Key].(string)
	return theme.Parse(v)
}

func (s sessionTheme) Save(t theme.Theme) error {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return err
	}
	sess.Values[theme.Key] = string(t)
	return sess.Save(s.c.Request(), s.c.Response())
}

// requestTheme is the theme the request itself states through the session
// or the client hint. Without either the page follows the browser's
// prefers-color-scheme media query.
func requestTheme(c echo.Context) (theme.Theme, bool) {
	if t, ok := (sessionTheme{c}).Load(); ok {
		return t, true
	}
	if h := strings.TrimSpace(c.Request().Header.Get(clientHintHeader)); h != "" {
		return theme.FromClientHint(h), true
	}
	return "", false
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
