package blogfront

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/filter"
	"github.com/eringen/blogfront/frontmatter"
	"github.com/eringen/blogfront/markdown"
	"github.com/eringen/blogfront/theme"
	"github.com/eringen/blogfront/views"
)

const relatedLimit = 3

func isPartial(c echo.Context, name string) bool {
	return c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == name
}

// site is the site block of every view model for this request.
func (a *App) site(c echo.Context) views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		BasePath:    a.basePath(c),
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Lang:        a.Config.Lang,
	}
}

func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	t, _ := requestTheme(c)
	return views.Page{
		Site:  a.site(c),
		Meta:  meta,
		Theme: string(t),
		CSRF:  CsrfToken(c),
	}
}

// absURL is the canonical absolute URL of a site-relative path.
func (a *App) absURL(rel string) string {
	return a.Config.URL + rel
}

func (a *App) tagLinks(base string, tags []string, s filter.State) []views.TagLink {
	links := make([]views.TagLink, 0, len(tags)+1)
	active := s.ActiveTag()
	for _, t := range append([]string{filter.AllTag}, tags...) {
		links = append(links, views.TagLink{
			Name:   t,
			URL:    ListPath(base, s.WithTag(t)),
			Active: t == active,
		})
	}
	return links
}

func (a *App) cards(base string, posts []filter.PostSummary) []views.Card {
	cards := make([]views.Card, 0, len(posts))
	for _, p := range posts {
		tags := make([]views.TagLink, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, views.TagLink{Name: t, URL: ListPath(base, filter.State{Tag: t})})
		}
		cards = append(cards, views.Card{
			File:     p.File,
			URL:      PostPath(base, p.File),
			Title:    p.DisplayTitle(),
			Date:     content.FormatDate(a.Config.DateLayout, p.Date),
			Category: p.Category,
			Excerpt:  p.Excerpt,
			Tags:     tags,
		})
	}
	return cards
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	base := a.basePath(c)
	state := filter.State{Query: c.QueryParam("q"), Tag: c.QueryParam("tag")}

	data := views.HomeData{
		Page: a.page(c, views.PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         a.absURL(base),
			OGType:      "website",
		}),
		Query:      state.Query,
		ActiveTag:  state.ActiveTag(),
		DebounceMS: a.Config.SearchDebounce.Milliseconds(),
	}
	data.JSONLD = views.WebsiteJSONLD(data.Site)

	status := http.StatusOK
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		a.Logger.Error("load manifest", slog.String("error", err.Error()))
		data.Message = content.MsgListUnavailable
		status = http.StatusServiceUnavailable
	} else {
		tags, _ := a.Cache.Tags(ctx)
		res := state.Apply(posts)
		data.Cards = a.cards(base, res.Posts)
		data.Empty = res.Empty
		data.Tags = a.tagLinks(base, tags, state)
	}

	if isPartial(c, "list") {
		return RenderStatus(c, status, a.Views.PostList(data))
	}
	return RenderStatus(c, status, a.Views.Home(data))
}

// postFile extracts the document identifier from /posts/<file>/.
func postFile(c echo.Context) string {
	file := strings.Trim(c.Param("*"), "/")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(file); err == nil {
			file = unescaped
		}
	}
	return file
}

func documentStatus(err error) int {
	switch {
	case errors.Is(err, content.ErrMissingFile), errors.Is(err, content.ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

func (a *App) handlePost(c echo.Context) error {
	return a.renderPost(c, postFile(c))
}

func (a *App) renderPost(c echo.Context, file string) error {
	ctx := c.Request().Context()
	base := a.basePath(c)
	data := views.PostData{
		Page: a.page(c, views.PageMeta{
			Title:  a.Config.Name,
			URL:    a.absURL(base),
			OGType: "article",
		}),
	}

	raw, err := a.Cache.Document(ctx, file)
	if err != nil {
		status := documentStatus(err)
		level := slog.LevelWarn
		if status == http.StatusServiceUnavailable {
			level = slog.LevelError
		}
		a.Logger.Log(ctx, level, "load document", slog.String("file", file), slog.String("error", err.Error()))
		data.Message = content.Message(err)
		return RenderStatus(c, status, a.Views.Post(data))
	}

	doc := frontmatter.Parse(raw)
	body, err := templ.ToGoHTML(ctx, markdown.Markdown(doc.Body))
	if err != nil {
		return err
	}

	title := doc.Metadata.String("title")
	if title == "" {
		title = content.UntitledTitle
	}
	tags := doc.Metadata.Tags()
	date := doc.Metadata.String("date")
	pagePath := PostPath(base, file)

	data.Title = title
	data.Date = content.FormatDate(a.Config.DateLayout, date)
	data.Category = doc.Metadata.String("category")
	data.Content = body
	for _, t := range tags {
		data.Tags = append(data.Tags, views.TagLink{Name: t, URL: ListPath(base, filter.State{Tag: t})})
	}
	data.Meta.Title = title + " | " + a.Config.Name
	data.Meta.URL = a.absURL(pagePath)

	summary, ok, err := a.Cache.Lookup(ctx, file)
	switch {
	case err != nil:
		a.Logger.Warn("related posts unavailable", slog.String("error", err.Error()))
	case ok:
		data.Meta.Description = summary.Excerpt
	}
	if err == nil {
		posts, _ := a.Cache.Posts(ctx)
		data.Related = a.cards(base, RelatedPosts(file, tags, posts, relatedLimit))
	}

	if a.Config.Comments.Enabled() {
		cc := a.Config.Comments
		data.Comments = &views.Comments{
			Repo:       cc.Repo,
			RepoID:     cc.RepoID,
			Category:   cc.Category,
			CategoryID: cc.CategoryID,
			Mapping:    cc.Mapping,
			Lang:       cc.Lang,
		}
	}
	data.JSONLD = views.BlogPostingJSONLD(data.Site, title, data.Meta.Description, date, data.Meta.URL, tags)

	return Render(c, a.Views.Post(data))
}

// handleLegacyPost keeps old post.html?file= links working.
func (a *App) handleLegacyPost(c echo.Context) error {
	file := c.QueryParam("file")
	if err := content.ValidateFile(file); err != nil {
		return a.renderPost(c, file)
	}
	return c.Redirect(http.StatusMovedPermanently, PostPath(a.basePath(c), file))
}

type apiPostsResponse struct {
	Posts []filter.PostSummary `json:"posts"`
	Tags  []string             `json:"tags"`
	Empty bool                 `json:"empty"`
}

func (a *App) handleAPIPosts(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		a.Logger.Error("load manifest", slog.String("error", err.Error()))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": content.MsgListUnavailable})
	}
	tags, _ := a.Cache.Tags(ctx)
	res := filter.State{Query: c.QueryParam("q"), Tag: c.QueryParam("tag")}.Apply(posts)
	return c.JSON(http.StatusOK, apiPostsResponse{Posts: res.Posts, Tags: tags, Empty: res.Empty})
}

// handleTheme flips the theme the visitor currently sees. Without a saved
// preference or client hint the page reports it in the "from" field.
func (a *App) handleTheme(c echo.Context) error {
	current, ok := requestTheme(c)
	if !ok {
		current = theme.Resolve(c.FormValue("from"), theme.Light)
	}
	next := theme.Toggle(current)
	if err := (sessionTheme{c}).Save(next); err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, a.backTo(c))
}

// backTo is the same-site page the request came from, else the list view.
func (a *App) backTo(c echo.Context) string {
	base := a.basePath(c)
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, base) {
		return base
	}
	if ref.Host != "" && ref.Host != c.Request().Host {
		return base
	}
	return ref.RequestURI()
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	}
	return a.renderRSS(c, posts)
}

// handleRobots serves the user's robots.txt, or a permissive default that
// points at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + a.absURL(a.basePath(c)+"sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	data := views.ErrorData{Page: a.page(c, views.PageMeta{URL: a.absURL(a.basePath(c))})}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(data))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
		_ = RenderStatus(c, code, a.Views.ServerError(data))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
