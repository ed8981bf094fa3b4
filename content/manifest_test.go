package content

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogfront/filter"
	"github.com/eringen/blogfront/frontmatter"
)

func TestSummarize(t *testing.T) {
	doc := frontmatter.Parse("---\ntitle: Hello\ndate: 2024-01-15\ncategory: dev\ntags: [\"go\", \"web\"]\nexcerpt: Short one.\n---\nBody text.\n")
	got := Summarize("hello.md", doc)
	assert.Equal(t, filter.PostSummary{
		File:     "hello.md",
		Title:    "Hello",
		Date:     "2024-01-15",
		Category: "dev",
		Tags:     []string{"go", "web"},
		Excerpt:  "Short one.",
	}, got)
}

func TestSummarizeExcerptFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"first_paragraph", "First **bold** line\nsecond line\n\nNext paragraph.", "First bold line second line"},
		{"skips_heading", "# Title\n\nIntro `code` here.", "Intro code here."},
		{"skips_fence", "```go\nx := 1\n```\n\nAfter fence.", "After fence."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize("f.md", frontmatter.Document{Metadata: frontmatter.Metadata{}, Body: tt.body})
			assert.Equal(t, tt.want, got.Excerpt)
		})
	}
}

func TestSummarizeExcerptTruncated(t *testing.T) {
	body := strings.Repeat("가", 200)
	got := Summarize("f.md", frontmatter.Document{Metadata: frontmatter.Metadata{}, Body: body})
	assert.Equal(t, strings.Repeat("가", excerptRunes)+"…", got.Excerpt)
}

func TestBuildManifestOrdering(t *testing.T) {
	fsys := fstest.MapFS{
		"old.md":        {Data: []byte("---\ntitle: Old\ndate: 2023-05-01\n---\nold")},
		"new.md":        {Data: []byte("---\ntitle: New\ndate: 2024-02-01\n---\nnew")},
		"b-same.md":     {Data: []byte("---\ndate: 2024-02-01\n---\nb")},
		"undated.md":    {Data: []byte("no metadata at all")},
		"notes/deep.md": {Data: []byte("---\ndate: not a date\n---\ndeep")},
		"readme.txt":    {Data: []byte("ignored")},
	}
	posts, err := BuildManifest(fsys, "")
	require.NoError(t, err)

	var files []string
	for _, p := range posts {
		files = append(files, p.File)
	}
	assert.Equal(t, []string{"b-same.md", "new.md", "old.md", "notes/deep.md", "undated.md"}, files)
	assert.Equal(t, "no metadata at all", posts[4].Excerpt)
}

func TestWriteManifest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	posts := []filter.PostSummary{{File: "a.md", Title: "A & B", Tags: []string{"x"}}}
	require.NoError(t, WriteManifest(&buf, posts))
	assert.Contains(t, buf.String(), `"title": "A & B"`)

	var back []filter.PostSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, posts, back)
}

func TestParseDate(t *testing.T) {
	_, ok := ParseDate("2024-01-15")
	assert.True(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("someday")
	assert.False(t, ok)
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-01-15", "2024. 1. 15."},
		{"2023-12-03T10:00:00Z", "2023. 12. 3."},
		{"", ""},
		{"someday", "someday"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate("2006. 1. 2.", tt.raw), "raw %q", tt.raw)
	}
}
