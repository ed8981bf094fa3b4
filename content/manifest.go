package content

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/eringen/blogfront/filter"
	"github.com/eringen/blogfront/frontmatter"
)

// DefaultPattern matches every markdown page below the pages directory.
const DefaultPattern = "**/*.md"

const excerptRunes = 160

// Summarize builds the manifest entry for a parsed page.
func Summarize(file string, doc frontmatter.Document) filter.PostSummary {
	m := doc.Metadata
	excerpt := m.String("excerpt")
	if excerpt == "" {
		excerpt = m.String("description")
	}
	if excerpt == "" {
		excerpt = firstParagraph(doc.Body)
	}
	return filter.PostSummary{
		File:     file,
		Title:    m.String("title"),
		Date:     m.String("date"),
		Category: m.String("category"),
		Tags:     m.Tags(),
		Excerpt:  excerpt,
	}
}

// firstParagraph returns the first prose paragraph of a markdown body,
// flattened to one line and truncated.
func firstParagraph(body string) string {
	inFence := false
	var para []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		if len(para) == 0 && isBlockMarker(trimmed) {
			continue
		}
		para = append(para, trimmed)
	}
	text := stripInline(strings.Join(para, " "))
	return truncate(text, excerptRunes)
}

func isBlockMarker(s string) bool {
	for _, p := range []string{"#", ">", "|", "![", "<", "---", "- ", "* "} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var inlineMarks = strings.NewReplacer("**", "", "__", "", "~~", "", "`", "")

func stripInline(s string) string {
	return inlineMarks.Replace(s)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

// BuildManifest parses every page in fsys matching pattern and returns
// their summaries, newest first. Pages without a parsable date sort last,
// ties break on the file identifier.
func BuildManifest(fsys fs.FS, pattern string) ([]filter.PostSummary, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	posts := make([]filter.PostSummary, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		posts = append(posts, Summarize(path.Clean(name), frontmatter.Parse(string(data))))
	}
	SortPosts(posts)
	return posts, nil
}

// SortPosts orders posts by date descending, then by file.
func SortPosts(posts []filter.PostSummary) {
	dates := make(map[string]time.Time, len(posts))
	for _, p := range posts {
		if t, ok := ParseDate(p.Date); ok {
			dates[p.File] = t
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		ti, iok := dates[posts[i].File]
		tj, jok := dates[posts[j].File]
		switch {
		case iok && jok && !ti.Equal(tj):
			return ti.After(tj)
		case iok != jok:
			return iok
		}
		return posts[i].File < posts[j].File
	})
}

// ParseDate parses a free-form manifest date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a manifest or front matter date with layout. Values
// ParseDate cannot read are returned unchanged.
func FormatDate(layout, raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format(layout)
}

// WriteManifest encodes posts as an indented JSON array.
func WriteManifest(w io.Writer, posts []filter.PostSummary) error {
	if posts == nil {
		posts = []filter.PostSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(posts)
}
