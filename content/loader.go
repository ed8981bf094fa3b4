// Package content loads the post manifest and post documents from a site
// directory or a remote base URL.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/eringen/blogfront/filter"
)

const (
	// ManifestName is the manifest file at the content root.
	ManifestName = "posts.json"
	// PagesDir holds one markdown document per post.
	PagesDir = "pages"
)

var (
	ErrMissingFile = errors.New("no document identifier")
	ErrInvalidFile = errors.New("invalid document identifier")
	ErrNotFound    = errors.New("document not found")
	ErrUnavailable = errors.New("content unavailable")
)

// Loader fetches the manifest and individual documents.
type Loader interface {
	Manifest(ctx context.Context) ([]filter.PostSummary, error)
	Document(ctx context.Context, file string) (string, error)
}

// ValidateFile rejects empty identifiers and identifiers that would escape
// the pages directory.
func ValidateFile(file string) error {
	if file == "" {
		return ErrMissingFile
	}
	if strings.ContainsRune(file, '\\') || !fs.ValidPath(file) || file == "." {
		return fmt.Errorf("%w: %q", ErrInvalidFile, file)
	}
	return nil
}

// DetectBasePath returns "/blog/" for paths under /blog/ and "/" otherwise.
func DetectBasePath(p string) string {
	if strings.HasPrefix(p, "/blog/") {
		return "/blog/"
	}
	return "/"
}

// decodeManifest decodes a manifest, dropping entries without a file.
func decodeManifest(data []byte, logger *slog.Logger) ([]filter.PostSummary, error) {
	var raw []filter.PostSummary
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, ManifestName, err)
	}
	posts := make([]filter.PostSummary, 0, len(raw))
	for i, p := range raw {
		if p.File == "" {
			logger.Warn("manifest entry without file dropped", slog.Int("index", i), slog.String("title", p.Title))
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// FSLoader reads content from a file system, typically os.DirFS(dir).
type FSLoader struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewFSLoader creates an FSLoader over fsys.
func NewFSLoader(fsys fs.FS, logger *slog.Logger) *FSLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSLoader{fsys: fsys, logger: logger}
}

// Manifest reads and decodes the manifest. Any failure is ErrUnavailable.
func (l *FSLoader) Manifest(ctx context.Context) ([]filter.PostSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, ManifestName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeManifest(data, l.logger)
}

// Document returns the raw text of pages/<file>.
func (l *FSLoader) Document(ctx context.Context, file string) (string, error) {
	if err := ValidateFile(file); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, PagesDir+"/"+file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return string(data), nil
}

// maxBody caps the size of a fetched manifest or document.
const maxBody = 8 << 20

// HTTPLoader fetches content relative to a base URL.
type HTTPLoader struct {
	base   *url.URL
	client *http.Client
	logger *slog.Logger
}

// NewHTTPLoader creates an HTTPLoader for base. A nil client uses
// http.DefaultClient.
func NewHTTPLoader(base string, client *http.Client, logger *slog.Logger) (*HTTPLoader, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse content url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content url %q: scheme must be http or https", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPLoader{base: u, client: client, logger: logger}, nil
}

func (l *HTTPLoader) get(ctx context.Context, segments ...string) ([]byte, int, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := l.base.JoinPath(escaped...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	return data, resp.StatusCode, err
}

// Manifest fetches <base>posts.json. Any failure is ErrUnavailable.
func (l *HTTPLoader) Manifest(ctx context.Context) ([]filter.PostSummary, error) {
	data, _, err := l.get(ctx, ManifestName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeManifest(data, l.logger)
}

// Document fetches <base>pages/<file>. A 404 is ErrNotFound; any other
// failure is ErrUnavailable.
func (l *HTTPLoader) Document(ctx context.Context, file string) (string, error) {
	if err := ValidateFile(file); err != nil {
		return "", err
	}
	segments := append([]string{PagesDir}, strings.Split(file, "/")...)
	data, status, err := l.get(ctx, segments...)
	switch {
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return string(data), nil
}
