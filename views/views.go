// Package views renders the site's pages. The pages are html/template files
// exposed as templ components so handlers and callers can swap any of them
// for their own templ code.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"tagClass":  TagClass,
	"themeIcon": ThemeIcon,
}

var (
	homeTmpl  = parsePage("home.html")
	postTmpl  = parsePage("post.html")
	errorTmpl = parsePage("error.html")
)

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html",
		"templates/partials.html",
		"templates/"+name,
	))
}

// Home is the full list page.
func Home(d HomeData) templ.Component {
	return templ.FromGoHTML(homeTmpl.Lookup("layout"), d)
}

// PostList is the card list region of the list page on its own, returned
// to partial (htmx) requests.
func PostList(d HomeData) templ.Component {
	return templ.FromGoHTML(homeTmpl.Lookup("post-list"), d)
}

// Post is the single post page.
func Post(d PostData) templ.Component {
	return templ.FromGoHTML(postTmpl.Lookup("layout"), d)
}

// NotFound is the 404 page.
func NotFound(d ErrorData) templ.Component {
	if d.Meta.Title == "" {
		d.Meta.Title = "Page not found"
	}
	if d.Message == "" {
		d.Message = "The page you are looking for does not exist."
	}
	return templ.FromGoHTML(errorTmpl.Lookup("layout"), d)
}

// ServerError is the 5xx page.
func ServerError(d ErrorData) templ.Component {
	if d.Meta.Title == "" {
		d.Meta.Title = "Something went wrong"
	}
	if d.Message == "" {
		d.Message = "An error occurred while loading this page. Please try again later."
	}
	return templ.FromGoHTML(errorTmpl.Lookup("layout"), d)
}
