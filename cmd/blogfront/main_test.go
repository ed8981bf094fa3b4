package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogfront/filter"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func initSite(t *testing.T) string {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	dir := filepath.Join(t.TempDir(), "test-blog")
	out, err := run(t, "init", dir)
	require.NoError(t, err, out)
	return dir
}

func TestInit(t *testing.T) {
	dir := initSite(t)

	cfg := readFile(t, filepath.Join(dir, "blogfront.yaml"))
	assert.Contains(t, cfg, "name: Test Blog")
	assert.Contains(t, cfg, "content_dir: site")
	assert.Contains(t, cfg, "manifest_cache_ttl: 1m0s")
	assert.Contains(t, cfg, "search_debounce: 300ms")

	page := readFile(t, filepath.Join(dir, "site", "pages", "hello-world.md"))
	assert.Contains(t, page, "title: Hello, Test Blog\n")
	assert.Contains(t, page, "date: 2024-01-15\n")

	var posts []filter.PostSummary
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "site", "posts.json"))), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "hello-world.md", posts[0].File)
	assert.Equal(t, "Hello, Test Blog", posts[0].Title)
	assert.Equal(t, []string{"welcome", "meta"}, posts[0].Tags)

	assert.FileExists(t, filepath.Join(dir, ".env.example"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
	assert.NoFileExists(t, filepath.Join(dir, "dotenv"))
}

func TestInitExistingDir(t *testing.T) {
	_, err := run(t, "init", t.TempDir())
	assert.ErrorContains(t, err, "already exists")
}

func TestInitName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x")
	_, err := run(t, "init", dir, "--name", "Field Notes", "--url", "https://notes.example.com")
	require.NoError(t, err)

	cfg := readFile(t, filepath.Join(dir, "blogfront.yaml"))
	assert.Contains(t, cfg, "name: Field Notes")
	assert.Contains(t, cfg, "url: https://notes.example.com")
}

func TestInitInvalidURL(t *testing.T) {
	_, err := run(t, "init", filepath.Join(t.TempDir(), "x"), "--url", "notes.example.com")
	assert.ErrorContains(t, err, "invalid config")
}

func TestManifest(t *testing.T) {
	dir := initSite(t)
	site := filepath.Join(dir, "site")
	require.NoError(t, os.WriteFile(filepath.Join(site, "pages", "second.md"),
		[]byte("---\ntitle: Second\ndate: 2025-03-01\ntags: [\"go\"]\n---\nNewer post.\n"), 0o644))

	out, err := run(t, "manifest", "--content-dir", site, "--stdout")
	require.NoError(t, err)
	var posts []filter.PostSummary
	require.NoError(t, json.Unmarshal([]byte(out), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "second.md", posts[0].File)
	assert.Equal(t, "hello-world.md", posts[1].File)

	// Without --stdout the file on disk is replaced.
	out, err = run(t, "manifest", "--content-dir", site)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 posts")
	assert.Contains(t, readFile(t, filepath.Join(site, "posts.json")), `"second.md"`)
}

func TestManifestPattern(t *testing.T) {
	dir := initSite(t)
	site := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "pages", "drafts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "pages", "drafts", "wip.md"), []byte("draft\n"), 0o644))

	out, err := run(t, "manifest", "--content-dir", site, "--stdout", "--pattern", "drafts/*.md")
	require.NoError(t, err)
	var posts []filter.PostSummary
	require.NoError(t, json.Unmarshal([]byte(out), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "drafts/wip.md", posts[0].File)
}

func TestCheck(t *testing.T) {
	dir := initSite(t)
	site := filepath.Join(dir, "site")

	out, err := run(t, "check", "--content-dir", site)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no errors")

	require.NoError(t, os.WriteFile(filepath.Join(site, "pages", "broken.md"),
		[]byte("---\ntitle: [unclosed\n---\nbody\n"), 0o644))
	out, err = run(t, "check", "--content-dir", site)
	assert.ErrorContains(t, err, "1 error(s)")
	assert.Contains(t, out, "broken.md")
	assert.Contains(t, out, "not valid YAML")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "blogfront dev\n", out)
}

func TestToTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-blog", "My Blog"},
		{"myblog", "Myblog"},
		{"a--b", "A  B"},
	}
	for _, tt := range tests {
		if got := toTitle(tt.in); got != tt.want {
			t.Errorf("toTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
