package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []PostSummary {
	return []PostSummary{
		{File: "a.md", Title: "Hello World", Tags: []string{"x"}},
		{File: "b.md", Title: "Other", Tags: []string{"y"}},
	}
}

func files(posts []PostSummary) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.File)
	}
	return out
}

func TestFilter(t *testing.T) {
	posts := []PostSummary{
		{File: "go.md", Title: "Writing Go", Category: "dev", Tags: []string{"go", "backend"}, Excerpt: "Channels and goroutines."},
		{File: "css.md", Title: "Grid layouts", Category: "design", Tags: []string{"css"}, Excerpt: "Two-dimensional layout."},
		{File: "misc.md", Excerpt: "No title here, just notes on GO tooling."},
		{File: "trip.md", Title: "Seoul trip", Category: "Travel"},
	}
	tests := []struct {
		name string
		term string
		tag  string
		want []string
	}{
		{"everything", "", "", []string{"go.md", "css.md", "misc.md", "trip.md"}},
		{"all_sentinel", "", AllTag, []string{"go.md", "css.md", "misc.md", "trip.md"}},
		{"tag_only", "", "css", []string{"css.md"}},
		{"title_case_insensitive", "WRITING", "", []string{"go.md"}},
		{"excerpt_match", "tooling", "", []string{"misc.md"}},
		{"tag_text_match", "backend", "", []string{"go.md"}},
		{"category_match", "travel", "", []string{"trip.md"}},
		{"term_trimmed", "  grid  ", "", []string{"css.md"}},
		{"whitespace_only_term", "   ", "", []string{"go.md", "css.md", "misc.md", "trip.md"}},
		{"term_across_fields", "go", "", []string{"go.md", "misc.md"}},
		{"and_semantics", "go", "go", []string{"go.md"}},
		{"and_semantics_no_overlap", "grid", "go", []string{}},
		{"unknown_tag", "", "rust", []string{}},
		{"tag_case_sensitive", "", "GO", []string{}},
		{"tags_joined_by_space", "go backend", "", []string{"go.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(posts, tt.term, tt.tag)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, files(got))
		})
	}
}

func TestFilterScenario(t *testing.T) {
	posts := samplePosts()

	assert.Equal(t, []string{"a.md"}, files(Filter(posts, "hello", AllTag)))
	assert.Equal(t, []string{"b.md"}, files(Filter(posts, "", "y")))

	res := State{Query: "zzz"}.Apply(posts)
	assert.Empty(t, res.Posts)
	assert.True(t, res.Empty)

	assert.Equal(t, []string{"x", "y"}, Tags(posts))
}

func TestFilterIsIdempotent(t *testing.T) {
	posts := samplePosts()
	once := Filter(posts, "o", "x")
	twice := Filter(once, "o", "x")
	assert.Equal(t, once, twice)
}

func TestFilterPreservesOrder(t *testing.T) {
	posts := []PostSummary{
		{File: "3.md", Title: "note c"},
		{File: "1.md", Title: "note a"},
		{File: "skip.md", Title: "other"},
		{File: "2.md", Title: "note b"},
	}
	assert.Equal(t, []string{"3.md", "1.md", "2.md"}, files(Filter(posts, "note", "")))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	posts := samplePosts()
	before := samplePosts()
	_ = Filter(posts, "hello", "x")
	_ = Filter(posts, "", "y")
	assert.Equal(t, before, posts)
}

func TestFilterResultIsSubset(t *testing.T) {
	posts := samplePosts()
	for _, tag := range []string{"", AllTag, "x", "y", "z"} {
		for _, term := range []string{"", "o", "world", "nothing"} {
			for _, p := range Filter(posts, term, tag) {
				assert.Contains(t, posts, p)
			}
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, "x", "y")
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, Tags(nil))
}

func TestTags(t *testing.T) {
	posts := []PostSummary{
		{File: "1", Tags: []string{"web", "Go"}},
		{File: "2", Tags: []string{"go", "web"}},
		{File: "3"},
	}
	assert.Equal(t, []string{"Go", "go", "web"}, Tags(posts))
}

func TestStateApply(t *testing.T) {
	posts := samplePosts()

	var zero State
	assert.Equal(t, AllTag, zero.ActiveTag())
	res := zero.Apply(posts)
	assert.False(t, res.Empty)
	assert.Len(t, res.Posts, 2)

	s := zero.WithTag("y")
	assert.Equal(t, "y", s.ActiveTag())
	assert.Equal(t, "", zero.Tag)
	assert.Equal(t, []string{"b.md"}, files(s.Apply(posts).Posts))

	s = s.WithQuery("hello")
	res = s.Apply(posts)
	assert.True(t, res.Empty)
	assert.NotNil(t, res.Posts)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "T", PostSummary{File: "f.md", Title: "T"}.DisplayTitle())
	assert.Equal(t, "f.md", PostSummary{File: "f.md"}.DisplayTitle())
}
