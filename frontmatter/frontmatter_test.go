package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta Metadata
		wantBody string
	}{
		{
			name:     "no_block",
			input:    "# Title\n\nJust text.\n",
			wantMeta: Metadata{},
			wantBody: "# Title\n\nJust text.\n",
		},
		{
			name:     "simple_block",
			input:    "---\ntitle: Hello\ndate: 2024-01-15\n---\n# Hello\nBody.\n",
			wantMeta: Metadata{"title": "Hello", "date": "2024-01-15"},
			wantBody: "# Hello\nBody.\n",
		},
		{
			name:     "empty_body",
			input:    "---\ntitle: Only meta\n---\n",
			wantMeta: Metadata{"title": "Only meta"},
			wantBody: "",
		},
		{
			name:     "quoted_values",
			input:    "---\ntitle: \"Quoted: yes\"\ncategory: 'dev'\n---\nbody",
			wantMeta: Metadata{"title": "Quoted: yes", "category": "dev"},
			wantBody: "body",
		},
		{
			name:     "mismatched_quotes_kept",
			input:    "---\ntitle: \"half'\n---\nbody",
			wantMeta: Metadata{"title": "\"half'"},
			wantBody: "body",
		},
		{
			name:     "single_quote_char_kept",
			input:    "---\ntitle: \"\n---\nbody",
			wantMeta: Metadata{"title": "\""},
			wantBody: "body",
		},
		{
			name:     "value_keeps_later_colons",
			input:    "---\nlink: https://example.com/a\n---\nbody",
			wantMeta: Metadata{"link": "https://example.com/a"},
			wantBody: "body",
		},
		{
			name:     "duplicate_key_last_wins",
			input:    "---\ntitle: first\ntitle: second\n---\nbody",
			wantMeta: Metadata{"title": "second"},
			wantBody: "body",
		},
		{
			name:     "missing_closing_delimiter",
			input:    "---\ntitle: Broken\nno closing line\n",
			wantMeta: Metadata{},
			wantBody: "---\ntitle: Broken\nno closing line\n",
		},
		{
			name:     "closing_delimiter_without_newline",
			input:    "---\ntitle: x\n---",
			wantMeta: Metadata{},
			wantBody: "---\ntitle: x\n---",
		},
		{
			name:     "block_not_at_start",
			input:    "\n---\ntitle: x\n---\nbody",
			wantMeta: Metadata{},
			wantBody: "\n---\ntitle: x\n---\nbody",
		},
		{
			name:     "first_closing_delimiter_wins",
			input:    "---\ntitle: x\n---\nintro\n---\nmore\n",
			wantMeta: Metadata{"title": "x"},
			wantBody: "intro\n---\nmore\n",
		},
		{
			name:     "tags_not_bracketed_stay_string",
			input:    "---\ntags: go\n---\nbody",
			wantMeta: Metadata{"tags": "go"},
			wantBody: "body",
		},
		{
			name:     "brackets_only_decoded_for_tags",
			input:    "---\naliases: [\"a\", \"b\"]\n---\nbody",
			wantMeta: Metadata{"aliases": "[\"a\", \"b\"]"},
			wantBody: "body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			require.NotNil(t, doc.Metadata)
			assert.Equal(t, tt.wantMeta, doc.Metadata)
			assert.Equal(t, tt.wantBody, doc.Body)
		})
	}
}

func TestParseLinesWithoutColonAreSkipped(t *testing.T) {
	doc := Parse("---\ntitle: Hello\njust words\n: leading colon\n   \n---\nbody")
	assert.Equal(t, Metadata{"title": "Hello"}, doc.Metadata)
	assert.Equal(t, "body", doc.Body)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"strict_json", `tags: ["a", "b"]`, []string{"a", "b"}},
		{"mixed_quotes_fallback", `tags: [a, "b"]`, []string{"a", "b"}},
		{"single_quotes_fallback", `tags: ['go', 'web']`, []string{"go", "web"}},
		{"bare_words_fallback", `tags: [go,  web , cli]`, []string{"go", "web", "cli"}},
		{"empty_json", `tags: []`, []string{}},
		{"json_keeps_commas", `tags: ["a, b", "c"]`, []string{"a, b", "c"}},
		{"fallback_splits_commas", `tags: ['a, b', c]`, []string{"a", "b", "c"}},
		{"quoted_whole_list", `tags: "[x, y]"`, []string{"x", "y"}},
		{"numbers_fallback_to_strings", `tags: [1, 2]`, []string{"1", "2"}},
		{"json_single_element", `tags: ["a, b"]`, []string{"a, b"}},
		{"stray_quote_piece", `tags: [a", 'b]`, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse("---\n" + tt.line + "\n---\n")
			assert.Equal(t, tt.want, doc.Metadata.Tags())
			assert.Equal(t, tt.want, doc.Metadata[TagsKey])
		})
	}
}

func TestParseBodyIsTextAfterClosingDelimiter(t *testing.T) {
	body := "First line\n\n```go\nfmt.Println(\"---\")\n```\n"
	doc := Parse("---\ntitle: t\ntags: [\"x\"]\n---\n" + body)
	assert.Equal(t, body, doc.Body)
}

func TestMetadataAccessors(t *testing.T) {
	meta := Metadata{"title": "T", "tags": []string{"a"}}
	assert.Equal(t, "T", meta.String("title"))
	assert.Equal(t, "", meta.String("missing"))
	assert.Equal(t, "", meta.String("tags"))
	assert.Equal(t, []string{"a"}, meta.Tags())

	assert.Equal(t, []string{"solo"}, Metadata{"tags": "solo"}.Tags())
	assert.Nil(t, Metadata{"tags": ""}.Tags())
	assert.Nil(t, Metadata{}.Tags())
}
