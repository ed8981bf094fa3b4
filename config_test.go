package blogfront

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogfront/content"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "/", cfg.BasePath)
	assert.Equal(t, "site", cfg.ContentDir)
	assert.Equal(t, time.Minute, cfg.ManifestCacheTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, DefaultDateLayout, cfg.DateLayout)
	assert.Equal(t, "pathname", cfg.Comments.Mapping)
	assert.Equal(t, "ko", cfg.Comments.Lang)
	assert.NoError(t, cfg.Validate())
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"/", "/"},
		{"blog", "/blog/"},
		{"/blog", "/blog/"},
		{" /blog/ ", "/blog/"},
		{"AUTO", AutoBasePath},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeBasePath(tt.input), "input %q", tt.input)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SiteConfig)
		wantErr bool
	}{
		{"defaults", func(*SiteConfig) {}, false},
		{"relative_url", func(c *SiteConfig) { c.URL = "example.com" }, true},
		{"ftp_content_url", func(c *SiteConfig) { c.ContentURL = "ftp://example.com/" }, true},
		{"https_content_url", func(c *SiteConfig) { c.ContentURL = "https://example.com/blog/" }, false},
		{"bad_log_level", func(c *SiteConfig) { c.LogLevel = "loud" }, true},
		{"comments_incomplete", func(c *SiteConfig) { c.Comments.Repo = "me/blog" }, true},
		{"comments_bad_repo", func(c *SiteConfig) {
			c.Comments = CommentsConfig{Repo: "blog", RepoID: "R", Category: "C", CategoryID: "D"}
		}, true},
		{"comments_complete", func(c *SiteConfig) {
			c.Comments = CommentsConfig{Repo: "me/blog", RepoID: "R", Category: "C", CategoryID: "D"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg SiteConfig
			tt.mutate(&cfg)
			cfg.setDefaults()
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogfront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: File Blog
base_path: blog
manifest_cache_ttl: 30s
comments:
  repo: me/blog
  repo_id: R_1
  category: General
  category_id: DIC_1
`), 0o644))
	t.Setenv("BLOGFRONT_ADDR", ":8080")
	t.Setenv("BLOGFRONT_COMMENTS_LANG", "en")

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "File Blog", cfg.Name)
	assert.Equal(t, "/blog/", cfg.BasePath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ManifestCacheTTL)
	assert.Equal(t, "me/blog", cfg.Comments.Repo)
	assert.Equal(t, "en", cfg.Comments.Lang)
	assert.True(t, cfg.Comments.Enabled())
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("BLOGFRONT_URL", "not a url")
	t.Chdir(t.TempDir())
	_, err := LoadConfig(viper.New())
	assert.Error(t, err)
}

func TestNewLoader(t *testing.T) {
	cfg := SiteConfig{ContentDir: t.TempDir()}
	l, err := cfg.NewLoader(quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &content.FSLoader{}, l)

	cfg.ContentURL = "https://example.com/blog"
	l, err = cfg.NewLoader(quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &content.HTTPLoader{}, l)
}
