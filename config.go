package blogfront

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/eringen/blogfront/content"
)

// SiteConfig holds all configuration for a blogfront site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD
	Lang        string `mapstructure:"lang"`        // html lang (default "ko")

	Addr     string `mapstructure:"addr"`      // Listen address (default ":3000")
	BasePath string `mapstructure:"base_path"` // Mount point, "/", e.g. "/blog/", or "auto"

	ContentDir string `mapstructure:"content_dir"` // Directory with posts.json and pages/ (default "site")
	ContentURL string `mapstructure:"content_url"` // Remote content root; overrides ContentDir
	StaticDir  string `mapstructure:"static_dir"`  // User static assets (default "public")
	Watch      bool   `mapstructure:"watch"`       // Invalidate the manifest cache on file changes

	SessionSecret string `mapstructure:"session_secret"` // Cookie signing secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	ManifestCacheTTL time.Duration `mapstructure:"manifest_cache_ttl"` // default 1min
	SearchDebounce   time.Duration `mapstructure:"search_debounce"`    // default 300ms
	DateLayout       string        `mapstructure:"date_layout"`        // Go layout for displayed dates

	APIRateLimit  int           `mapstructure:"api_rate_limit"`  // Requests per window per IP (default 60)
	APIRateWindow time.Duration `mapstructure:"api_rate_window"` // default 1min

	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error

	Comments CommentsConfig `mapstructure:"comments"`
}

// CommentsConfig configures the giscus comment widget. Comments are shown
// only when Repo is set.
type CommentsConfig struct {
	Repo       string `mapstructure:"repo"`
	RepoID     string `mapstructure:"repo_id"`
	Category   string `mapstructure:"category"`
	CategoryID string `mapstructure:"category_id"`
	Mapping    string `mapstructure:"mapping"`
	Lang       string `mapstructure:"lang"`
}

// Enabled reports whether the widget should be rendered.
func (c CommentsConfig) Enabled() bool {
	return c.Repo != ""
}

// DefaultDateLayout renders dates the way ko-KR locales do, e.g. "2024. 1. 15.".
const DefaultDateLayout = "2006. 1. 2."

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Lang == "" {
		c.Lang = "ko"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	c.BasePath = normalizeBasePath(c.BasePath)
	if c.ContentDir == "" {
		c.ContentDir = "site"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ManifestCacheTTL == 0 {
		c.ManifestCacheTTL = time.Minute
	}
	if c.SearchDebounce == 0 {
		c.SearchDebounce = 300 * time.Millisecond
	}
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
	if c.APIRateLimit == 0 {
		c.APIRateLimit = 60
	}
	if c.APIRateWindow == 0 {
		c.APIRateWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Comments.Mapping == "" {
		c.Comments.Mapping = "pathname"
	}
	if c.Comments.Lang == "" {
		c.Comments.Lang = c.Lang
	}
}

// AutoBasePath serves the site both at the root and under /blog/, picking
// the base path from each request.
const AutoBasePath = "auto"

// normalizeBasePath turns "", "blog", "/blog" and "/blog/" into "/" or "/blog/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	if strings.EqualFold(p, AutoBasePath) {
		return AutoBasePath
	}
	return "/" + p + "/"
}

// Validate checks the configuration after defaults are applied.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ContentURL, validation.By(absoluteURL)),
		validation.Field(&c.ManifestCacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.SearchDebounce, validation.Min(time.Duration(0))),
		validation.Field(&c.APIRateLimit, validation.Min(1)),
		validation.Field(&c.APIRateWindow, validation.Min(time.Millisecond)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Comments),
	)
}

var repoPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// Validate requires the repository and category IDs once a repository is set.
func (c CommentsConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Repo, validation.Match(repoPattern).Error("must be owner/name")),
		validation.Field(&c.RepoID, validation.Required),
		validation.Field(&c.Category, validation.Required),
		validation.Field(&c.CategoryID, validation.Required),
		validation.Field(&c.Mapping, validation.In("pathname", "url", "title", "og:title")),
	)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c SiteConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// EnvPrefix prefixes every environment variable read by LoadConfig, e.g.
// BLOGFRONT_CONTENT_DIR or BLOGFRONT_COMMENTS_REPO.
const EnvPrefix = "BLOGFRONT"

// ConfigName is the config file base name looked up by LoadConfig.
const ConfigName = "blogfront"

// LoadConfig reads configuration with precedence flags > env > file >
// defaults. v may already carry bound flags and an explicit config file.
// A missing config file is not an error.
func LoadConfig(v *viper.Viper) (SiteConfig, error) {
	var defaults SiteConfig
	defaults.setDefaults()
	for key, val := range map[string]any{
		"name":                 defaults.Name,
		"url":                  defaults.URL,
		"description":          "",
		"author":               "",
		"lang":                 defaults.Lang,
		"addr":                 defaults.Addr,
		"base_path":            defaults.BasePath,
		"content_dir":          defaults.ContentDir,
		"content_url":          "",
		"static_dir":           defaults.StaticDir,
		"watch":                false,
		"session_secret":       "",
		"cookie_secure":        false,
		"manifest_cache_ttl":   defaults.ManifestCacheTTL,
		"search_debounce":      defaults.SearchDebounce,
		"date_layout":          defaults.DateLayout,
		"api_rate_limit":       defaults.APIRateLimit,
		"api_rate_window":      defaults.APIRateWindow,
		"log_level":            defaults.LogLevel,
		"comments.repo":        "",
		"comments.repo_id":     "",
		"comments.category":    "",
		"comments.category_id": "",
		"comments.mapping":     defaults.Comments.Mapping,
		"comments.lang":        "",
	} {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := PrepareConfig(&cfg); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// PrepareConfig applies defaults to cfg and validates the result.
func PrepareConfig(cfg *SiteConfig) error {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLoader builds the content loader the configuration points at.
func (c SiteConfig) NewLoader(logger *slog.Logger) (content.Loader, error) {
	if c.ContentURL != "" {
		return content.NewHTTPLoader(c.ContentURL, nil, logger)
	}
	return content.NewFSLoader(os.DirFS(c.ContentDir), logger), nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLoader replaces the configured content source.
func WithLoader(l content.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
