package filter

// State is the current query and tag selection of one page view.
// The zero value selects everything.
type State struct {
	Query string
	Tag   string
}

// Result is the outcome of applying a State to a manifest.
type Result struct {
	Posts []PostSummary
	// Empty is set exactly when no post survived; callers show the
	// empty-result indicator instead of cards.
	Empty bool
}

// ActiveTag returns the selected tag, or AllTag when none is selected.
func (s State) ActiveTag() string {
	if s.Tag == "" {
		return AllTag
	}
	return s.Tag
}

// WithQuery returns a copy of s with the query replaced.
func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

// WithTag returns a copy of s with the tag selector replaced.
func (s State) WithTag(tag string) State {
	s.Tag = tag
	return s
}

// Apply filters posts by s.
func (s State) Apply(posts []PostSummary) Result {
	out := Filter(posts, s.Query, s.Tag)
	return Result{Posts: out, Empty: len(out) == 0}
}
