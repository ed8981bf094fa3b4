// Package filter narrows a post manifest by tag and free-text query.
package filter

import (
	"slices"
	"sort"
	"strings"
)

// AllTag is the tag selector that disables tag narrowing.
const AllTag = "all"

// PostSummary is one manifest entry. File is always present; every other
// field may be empty.
type PostSummary struct {
	File     string   `json:"file"`
	Title    string   `json:"title,omitempty"`
	Date     string   `json:"date,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
}

// DisplayTitle returns the title, falling back to the file identifier.
func (p PostSummary) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.File
}

// HasTag reports whether tag is one of the post's tags (exact match).
func (p PostSummary) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

func (p PostSummary) matches(term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Excerpt), term) ||
		strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

// Filter returns the posts carrying tagFilter whose title, excerpt, tags or
// category contain searchTerm, ignoring case. An empty tagFilter or AllTag
// keeps every tag; a blank searchTerm keeps every post. The input is never
// modified and the relative order of survivors is preserved.
func Filter(posts []PostSummary, searchTerm, tagFilter string) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	for _, p := range posts {
		if tagFilter != "" && tagFilter != AllTag && !p.HasTag(tagFilter) {
			continue
		}
		if term != "" && !p.matches(term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Tags returns every distinct tag in posts, sorted.
func Tags(posts []PostSummary) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
