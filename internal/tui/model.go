// Package tui is the terminal post browser: a debounced search box, tag
// filter cycling, a card list and a markdown reader.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eringen/blogfront/content"
	"github.com/eringen/blogfront/debounce"
	"github.com/eringen/blogfront/filter"
	"github.com/eringen/blogfront/frontmatter"
	"github.com/eringen/blogfront/theme"
)

const loadTimeout = 15 * time.Second

// Options configures a Model.
type Options struct {
	Title      string
	Loader     content.Loader
	Store      theme.Store   // nil disables persistence
	Ambient    theme.Theme   // used when nothing is stored
	Debounce   time.Duration // search quiescence window
	DateLayout string
}

type phase int

const (
	phaseList phase = iota
	phaseReader
)

type manifestMsg struct {
	posts []filter.PostSummary
	err   error
}

// queryTickMsg fires when the search box has been quiet for the debounce
// window. Only the tick carrying the latest seq is applied.
type queryTickMsg struct {
	seq int
}

type documentMsg struct {
	seq  int
	file string
	raw  string
	err  error
}

// reading is the post currently open in the reader.
type reading struct {
	summary filter.PostSummary
	doc     frontmatter.Document
	message string
	loaded  bool
}

// Model is the bubbletea model of the browser.
type Model struct {
	title      string
	loader     content.Loader
	store      theme.Store
	wait       time.Duration
	dateLayout string

	width, height int
	phase         phase
	input         textinput.Model
	reader        viewport.Model
	theme         theme.Theme
	styles        styles

	posts   []filter.PostSummary
	tags    []string
	state   filter.State
	result  filter.Result
	loading bool
	listMsg string
	cursor  int
	offset  int
	seq     int

	docSeq int
	open   reading

	status string
}

// New builds a Model. The manifest is loaded by Init.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search posts"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Focus()

	wait := opts.Debounce
	if wait <= 0 {
		wait = debounce.DefaultWait
	}
	layout := opts.DateLayout
	if layout == "" {
		layout = "2006-01-02"
	}
	title := opts.Title
	if title == "" {
		title = "Blog"
	}

	var saved string
	if opts.Store != nil {
		if t, ok := opts.Store.Load(); ok {
			saved = string(t)
		}
	}
	t := theme.Resolve(saved, opts.Ambient)

	return Model{
		title:      title,
		loader:     opts.Loader,
		store:      opts.Store,
		wait:       wait,
		dateLayout: layout,
		width:      80,
		height:     24,
		input:      ti,
		reader:     viewport.New(80, 20),
		theme:      t,
		styles:     newStyles(t),
		tags:       []string{filter.AllTag},
		loading:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadManifest())
}

func (m Model) loadManifest() tea.Cmd {
	l := m.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		posts, err := l.Manifest(ctx)
		return manifestMsg{posts: posts, err: err}
	}
}

func (m Model) loadDocument(seq int, file string) tea.Cmd {
	l := m.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		raw, err := l.Document(ctx, file)
		return documentMsg{seq: seq, file: file, raw: raw, err: err}
	}
}

func (m Model) scheduleQuery() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.wait, func(time.Time) tea.Msg {
		return queryTickMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.reader.Width = msg.Width
		m.reader.Height = max(msg.Height-readerChrome, 3)
		m.refreshReader()
		m.adjustOffset()
		return m, nil

	case manifestMsg:
		m.loading = false
		if msg.err != nil {
			m.listMsg = content.MsgListUnavailable
			return m, nil
		}
		m.listMsg = ""
		m.posts = msg.posts
		m.tags = append([]string{filter.AllTag}, filter.Tags(msg.posts)...)
		m.apply()
		return m, nil

	case queryTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.state = m.state.WithQuery(m.input.Value())
		m.apply()
		return m, nil

	case documentMsg:
		if msg.seq != m.docSeq || m.phase != phaseReader {
			return m, nil
		}
		m.open.loaded = true
		if msg.err != nil {
			m.open.message = content.Message(msg.err)
		} else {
			m.open.doc = frontmatter.Parse(msg.raw)
		}
		m.refreshReader()
		return m, nil

	case tea.KeyMsg:
		if m.phase == phaseReader {
			return m.updateReaderKey(msg)
		}
		if cmd, handled := m.handleListKey(msg); handled {
			return m, cmd
		}
	}

	if m.phase == phaseReader {
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd
	}

	prev := m.input.Value()
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.input.Value() != prev {
		m.seq++
		cmds = append(cmds, m.scheduleQuery())
	}
	return m, tea.Batch(cmds...)
}

// handleListKey processes keys the search box must not see.
func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+t":
		m.toggleTheme()
		return nil, true
	case "esc":
		if m.input.Value() == "" {
			return tea.Quit, true
		}
		m.input.SetValue("")
		m.seq++
		m.state = m.state.WithQuery("")
		m.apply()
		return nil, true
	case "tab":
		m.cycleTag(1)
		return nil, true
	case "shift+tab":
		m.cycleTag(-1)
		return nil, true
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return nil, true
	case "down", "ctrl+n":
		m.moveCursor(1)
		return nil, true
	case "pgup":
		m.moveCursor(-m.visibleCards())
		return nil, true
	case "pgdown":
		m.moveCursor(m.visibleCards())
		return nil, true
	case "enter":
		if m.cursor >= len(m.result.Posts) {
			return nil, true
		}
		return m.openPost(m.result.Posts[m.cursor]), true
	}
	return nil, false
}

func (m Model) updateReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		m.toggleTheme()
		return m, nil
	case "esc", "q", "backspace":
		m.phase = phaseList
		m.docSeq++
		m.open = reading{}
		m.input.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

func (m *Model) openPost(p filter.PostSummary) tea.Cmd {
	m.phase = phaseReader
	m.docSeq++
	m.open = reading{summary: p}
	m.input.Blur()
	m.refreshReader()
	return m.loadDocument(m.docSeq, p.File)
}

// apply re-runs the filter. Tag changes call it directly; query changes
// reach it through the debounce tick.
func (m *Model) apply() {
	m.result = m.state.Apply(m.posts)
	m.cursor = 0
	m.offset = 0
}

func (m *Model) cycleTag(delta int) {
	if len(m.tags) == 0 {
		return
	}
	idx := 0
	active := m.state.ActiveTag()
	for i, t := range m.tags {
		if t == active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.tags)) % len(m.tags)
	m.state = m.state.WithTag(m.tags[idx])
	m.apply()
}

func (m *Model) moveCursor(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), max(len(m.result.Posts)-1, 0))
	m.adjustOffset()
}

func (m *Model) adjustOffset() {
	visible := m.visibleCards()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.result.Posts)-visible, 0))
}

func (m *Model) toggleTheme() {
	m.theme = theme.Toggle(m.theme)
	m.styles = newStyles(m.theme)
	m.status = ""
	if m.store != nil {
		if err := m.store.Save(m.theme); err != nil {
			m.status = fmt.Sprintf("theme not saved: %v", err)
		}
	}
	m.refreshReader()
}

// Theme returns the active theme.
func (m Model) Theme() theme.Theme {
	return m.theme
}

// State returns the active query and tag.
func (m Model) State() filter.State {
	return m.state
}

// Result returns the posts currently listed.
func (m Model) Result() filter.Result {
	return m.result
}
