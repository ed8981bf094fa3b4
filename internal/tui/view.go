package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/filter"
)

const (
	cardLines    = 5 // title, meta, excerpt, tags, gap
	listChrome   = 7 // title, input, tags, divider, divider, help, status
	readerChrome = 6 // header lines + divider + help
)

func (m Model) visibleCards() int {
	return max((m.height-listChrome)/cardLines, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.phase == phaseReader {
		return m.viewReader()
	}
	return m.viewList()
}

func (m Model) divider() string {
	return m.styles.Divider.Render(strings.Repeat("─", max(m.width, 10)))
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderTags())
	b.WriteString("\n")
	b.WriteString(m.divider())
	b.WriteString("\n")
	b.WriteString(m.renderCards())
	b.WriteString(m.divider())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("type to search · tab/shift+tab tag · ↑/↓ move · enter open · ctrl+t theme · esc clear/quit"))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.status))
	}
	return b.String()
}

func (m Model) renderTags() string {
	active := m.state.ActiveTag()
	parts := make([]string, 0, len(m.tags))
	for _, t := range m.tags {
		if t == active {
			parts = append(parts, m.styles.ActiveTag.Render(t))
		} else {
			parts = append(parts, m.styles.Tag.Render(t))
		}
	}
	return lipgloss.NewStyle().Width(max(m.width, 10)).Render(strings.Join(parts, " "))
}

func (m Model) renderCards() string {
	switch {
	case m.loading:
		return m.styles.Fallback.Render("Loading posts…") + "\n"
	case m.listMsg != "":
		return m.styles.Fallback.Render(m.listMsg) + "\n"
	case m.result.Empty:
		return m.styles.Fallback.Render(content.MsgNoPosts) + "\n"
	}

	var b strings.Builder
	end := min(m.offset+m.visibleCards(), len(m.result.Posts))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderCard(m.result.Posts[i], i == m.cursor))
	}
	return b.String()
}

func (m Model) renderCard(p filter.PostSummary, selected bool) string {
	width := max(m.width-2, 10)
	cursor := "  "
	if selected {
		cursor = m.styles.Cursor.Render("▌ ")
	}

	meta := make([]string, 0, 2)
	if p.Date != "" {
		meta = append(meta, content.FormatDate(m.dateLayout, p.Date))
	}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, "#"+t)
	}

	lines := []string{
		m.styles.Title.Render(truncate(p.DisplayTitle(), width)),
		m.styles.Meta.Render(strings.Join(meta, " · ")),
		m.styles.Excerpt.Render(truncate(p.Excerpt, width)),
		m.styles.Meta.Render(truncate(strings.Join(tags, " "), width)),
	}
	var b strings.Builder
	for _, l := range lines {
		line := cursor + l
		if selected {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}

func (m Model) viewReader() string {
	var b strings.Builder
	b.WriteString(m.readerHeader())
	b.WriteString(m.divider())
	b.WriteString("\n")
	b.WriteString(m.reader.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ scroll · esc back · ctrl+t theme · ctrl+c quit"))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.status))
	}
	return b.String()
}

// readerHeader shows the document's own metadata once loaded, the manifest
// entry before that.
func (m Model) readerHeader() string {
	title := m.open.summary.DisplayTitle()
	date := m.open.summary.Date
	category := m.open.summary.Category
	tags := m.open.summary.Tags
	if m.open.loaded && m.open.message == "" {
		md := m.open.doc.Metadata
		title = md.String("title")
		if title == "" {
			title = content.UntitledTitle
		}
		date = md.String("date")
		category = md.String("category")
		tags = md.Tags()
	}

	meta := make([]string, 0, 2)
	if date != "" {
		meta = append(meta, content.FormatDate(m.dateLayout, date))
	}
	if category != "" {
		meta = append(meta, category)
	}
	hashed := make([]string, 0, len(tags))
	for _, t := range tags {
		hashed = append(hashed, "#"+t)
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Meta.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")
	b.WriteString(m.styles.Meta.Render(strings.Join(hashed, " ")))
	b.WriteString("\n")
	return b.String()
}

// refreshReader re-renders the open document into the viewport. It runs
// whenever the document, the width or the theme changes.
func (m *Model) refreshReader() {
	if m.phase != phaseReader {
		return
	}
	switch {
	case !m.open.loaded:
		m.reader.SetContent(m.styles.Fallback.Render("Loading…"))
	case m.open.message != "":
		m.reader.SetContent(m.styles.Fallback.Render(m.open.message))
	default:
		m.reader.SetContent(renderMarkdown(m.open.doc.Body, string(m.theme), m.reader.Width))
	}
	m.reader.GotoTop()
}

// renderMarkdown renders body for the terminal, falling back to the raw
// text when glamour cannot.
func renderMarkdown(body, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}
