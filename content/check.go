package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	adrg "github.com/adrg/frontmatter"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blogfront/frontmatter"
)

// Severity grades a Finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one problem found in a page's metadata block.
type Finding struct {
	File     string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.File, f.Severity, f.Message)
}

var yamlFormat = adrg.NewFormat("---", "---", yaml.Unmarshal)

// Check validates the metadata block of every page in fsys matching pattern
// as strict YAML and compares it with what the site parser extracts. A bad
// page yields findings, never an error.
func Check(fsys fs.FS, pattern string) ([]Finding, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	var findings []Finding
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		findings = append(findings, CheckPage(name, data)...)
	}
	return findings, nil
}

// CheckPage validates a single page.
func CheckPage(file string, data []byte) []Finding {
	var out []Finding
	add := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{File: file, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	var strict map[string]any
	_, err := adrg.MustParse(bytes.NewReader(data), &strict, yamlFormat)
	switch {
	case errors.Is(err, adrg.ErrNotFound):
		add(SeverityWarning, "no metadata block")
		return out
	case err != nil:
		add(SeverityError, "metadata is not valid YAML: %v", err)
	}

	doc := frontmatter.Parse(string(data))
	if len(doc.Metadata) == 0 && len(strict) > 0 {
		if bytes.HasPrefix(data, []byte("---\r\n")) {
			add(SeverityError, "metadata block uses CRLF line endings and will be shown as body text")
		} else {
			add(SeverityError, "metadata block must start on the first line and end with a line break after the closing ---")
		}
		return out
	}

	if doc.Metadata.String("title") == "" {
		add(SeverityWarning, "missing title")
	}
	date := doc.Metadata.String("date")
	switch {
	case date == "":
		add(SeverityWarning, "missing date")
	default:
		if _, ok := ParseDate(date); !ok {
			add(SeverityWarning, "date %q is not recognised", date)
		}
	}

	if want, ok := yamlTags(strict); ok {
		if got := doc.Metadata.Tags(); !slices.Equal(got, want) {
			add(SeverityWarning, "tags read as %q by the site but %q as YAML; use a JSON array of quoted strings",
				got, want)
		}
	}
	return out
}

// yamlTags extracts tags from strictly decoded metadata.
func yamlTags(meta map[string]any) ([]string, bool) {
	raw, ok := meta[frontmatter.TagsKey]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			tags = append(tags, scalarString(t))
		}
		return tags, true
	case string:
		return []string{v}, true
	}
	return nil, false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.DateOnly)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
