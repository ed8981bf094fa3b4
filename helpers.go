package blogfront

import (
	"net/url"
	"strings"

	"github.com/eringen/blogfront/filter"
)

// PostPath is the site-relative URL of a post page, e.g. "/blog/posts/a%20b.md/".
func PostPath(basePath, file string) string {
	segs := strings.Split(file, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return basePath + "posts/" + strings.Join(segs, "/") + "/"
}

// ListPath is the site-relative URL of the list view for the given state.
// The tag parameter is omitted for AllTag.
func ListPath(basePath string, s filter.State) string {
	q := url.Values{}
	if term := strings.TrimSpace(s.Query); term != "" {
		q.Set("q", term)
	}
	if tag := s.ActiveTag(); tag != filter.AllTag {
		q.Set("tag", tag)
	}
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}

// RelatedPosts finds up to limit posts that share at least one tag with
// tags, skipping file. Manifest order is kept.
func RelatedPosts(file string, tags []string, posts []filter.PostSummary, limit int) []filter.PostSummary {
	if len(tags) == 0 || limit <= 0 {
		return nil
	}
	var related []filter.PostSummary
	for _, p := range posts {
		if p.File == file {
			continue
		}
		for _, t := range tags {
			if p.HasTag(t) {
				related = append(related, p)
				break
			}
		}
		if len(related) == limit {
			break
		}
	}
	return related
}
