package views

import "html/template"

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string // absolute canonical root, no trailing slash
	BasePath    string // "/" or "/blog/"
	Description string
	Author      string
	Lang        string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the part of every view model the layout reads.
type Page struct {
	Site   Site
	Meta   PageMeta
	Theme  string // "light", "dark", or "" to follow prefers-color-scheme
	CSRF   string
	JSONLD template.JS
}

// Card is one post in the list view.
type Card struct {
	File     string
	URL      string
	Title    string
	Date     string
	Category string
	Excerpt  string
	Tags     []TagLink
}

// TagLink is a tag filter control.
type TagLink struct {
	Name   string
	URL    string
	Active bool
}

// HomeData is the list view model.
type HomeData struct {
	Page
	Query     string
	ActiveTag string
	Tags      []TagLink
	Cards     []Card
	// DebounceMS is the search quiescence window handed to the client script.
	DebounceMS int64
	// Empty shows the empty-result indicator.
	Empty bool
	// Message replaces the list when the manifest could not be loaded.
	Message string
}

// Comments configures the giscus widget.
type Comments struct {
	Repo       string
	RepoID     string
	Category   string
	CategoryID string
	Mapping    string
	Lang       string
}

// PostData is the post view model. When Message is set the post could not be
// shown and only the message is rendered in the content region.
type PostData struct {
	Page
	Title    string
	Date     string
	Category string
	Tags     []TagLink
	Content  template.HTML
	Message  string
	Comments *Comments
	Related  []Card
}

// ErrorData is the model of the not-found and server-error pages.
type ErrorData struct {
	Page
	Message string
}
