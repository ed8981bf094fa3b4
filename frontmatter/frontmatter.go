// Package frontmatter splits a post document into its metadata block and body.
//
// The metadata block is a line-oriented list of key: value pairs between two
// "---" lines at the very start of the document. Parsing never fails: input
// that does not carry a well-formed block is returned whole as the body.
package frontmatter

import (
	"encoding/json"
	"regexp"
	"strings"
)

// TagsKey is the only field decoded as a list.
const TagsKey = "tags"

var reBlock = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n(.*)$`)

// Metadata maps a field name to a string, or to a []string for TagsKey.
type Metadata map[string]any

// Document is a parsed post: its metadata and the raw, unrendered body.
type Document struct {
	Metadata Metadata
	Body     string
}

// Parse splits raw into metadata and body. Metadata is never nil.
func Parse(raw string) Document {
	m := reBlock.FindStringSubmatch(raw)
	if m == nil {
		return Document{Metadata: Metadata{}, Body: raw}
	}
	return Document{Metadata: parseBlock(m[1]), Body: m[2]}
}

func parseBlock(block string) Metadata {
	meta := Metadata{}
	for _, line := range strings.Split(block, "\n") {
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		if key == "" {
			continue
		}
		value := unquote(strings.TrimSpace(line[i+1:]))
		if key == TagsKey && strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			meta[key] = parseList(value)
			continue
		}
		meta[key] = value
	}
	return meta
}

// unquote strips one outer pair of matching straight quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// parseList decodes a bracketed list. Strict JSON is tried first; anything
// else is split on commas, so a tag containing a literal comma only survives
// in strict JSON form.
func parseList(s string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err == nil {
		if tags == nil {
			tags = []string{}
		}
		return tags
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, trimQuoteChars(strings.TrimSpace(p)))
	}
	return out
}

// trimQuoteChars removes at most one quote character from each end,
// independently of whether they match.
func trimQuoteChars(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

// String returns the string value for key, or "" when absent or a list.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Tags returns the tag list. A plain string value counts as a single tag.
func (m Metadata) Tags() []string {
	switch v := m[TagsKey].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
