// Package markdown renders post bodies to HTML as a templ component.
//
// The dialect is the one post authors write in practice: ATX headings,
// paragraphs where a single newline is a hard break, fenced code with an
// optional language, lists, block quotes, pipe tables, rules and the usual
// inline marks including ~~strike~~.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reHeading     = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	reRule        = regexp.MustCompile(`^ {0,3}(?:(?:- *){3,}|(?:\* *){3,}|(?:_ *){3,})$`)
	reOrderedItem = regexp.MustCompile(`^\d+[.)]\s+`)
	reBullet      = regexp.MustCompile(`^[-*+]\s+`)

	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`\b_([^_]+)_\b`)
	reStrike           = regexp.MustCompile(`~~(.+?)~~`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	// Link targets may hold one level of balanced parentheses.
	reImage = regexp.MustCompile(`!\[(.*?)\]\(((?:[^()]|\([^()]*\))*)\)`)
	reLink  = regexp.MustCompile(`\[(.*?)\]\(((?:[^()]|\([^()]*\))*)\)`)
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
	blockCode
)

type renderer struct {
	buf      *bytes.Buffer
	open     block
	codeLang string
	tbody    bool
}

// close ends the currently open block.
func (r *renderer) close() {
	switch r.open {
	case blockPara:
		r.buf.WriteString("</p>")
	case blockList:
		r.buf.WriteString("</ul>")
	case blockOrdered:
		r.buf.WriteString("</ol>")
	case blockQuote:
		r.buf.WriteString("</p></blockquote>")
	case blockTable:
		if r.tbody {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.tbody = false
	case blockCode:
		r.buf.WriteString("</code></pre>")
		if r.codeLang != "" {
			r.buf.WriteString("</div>")
			r.codeLang = ""
		}
	}
	r.open = blockNone
}

// enter closes any other open block and reports whether b was already open.
func (r *renderer) enter(b block, start string) bool {
	if r.open == b {
		return true
	}
	r.close()
	r.buf.WriteString(start)
	r.open = b
	return false
}

func (r *renderer) fence(info string) {
	if r.open == blockCode {
		r.close()
		return
	}
	r.close()
	lang := strings.Fields(info)
	if len(lang) == 0 {
		r.buf.WriteString(`<pre class="code-block"><code>`)
	} else {
		r.codeLang = html.EscapeString(lang[0])
		r.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + r.codeLang + `">` + r.codeLang + `</span>`)
		r.buf.WriteString(`<pre class="code-block"><code class="language-` + r.codeLang + `">`)
	}
	r.open = blockCode
}

func (r *renderer) line(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		r.close()

	case reHeading.MatchString(trimmed):
		m := reHeading.FindStringSubmatch(trimmed)
		r.close()
		level := strconv.Itoa(len(m[1]))
		r.buf.WriteString("<h" + level + ">" + FormatInline(m[2]) + "</h" + level + ">")

	case reRule.MatchString(line):
		r.close()
		r.buf.WriteString("<hr/>")

	case strings.HasPrefix(trimmed, "|"):
		r.tableRow(trimmed)

	case reBullet.MatchString(trimmed):
		r.enter(blockList, "<ul>")
		r.buf.WriteString("<li>" + FormatInline(reBullet.ReplaceAllString(trimmed, "")) + "</li>")

	case reOrderedItem.MatchString(trimmed):
		r.enter(blockOrdered, "<ol>")
		r.buf.WriteString("<li>" + FormatInline(reOrderedItem.ReplaceAllString(trimmed, "")) + "</li>")

	case strings.HasPrefix(trimmed, ">"):
		text := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
		if r.enter(blockQuote, "<blockquote><p>") {
			r.buf.WriteString("<br/>")
		}
		r.buf.WriteString(FormatInline(text))

	default:
		if r.enter(blockPara, "<p>") {
			r.buf.WriteString("<br/>")
		}
		r.buf.WriteString(FormatInline(trimmed))
	}
}

func (r *renderer) tableRow(line string) {
	if r.open != blockTable {
		r.close()
		r.buf.WriteString("<table><thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString("<th>" + FormatInline(cell) + "</th>")
		}
		r.buf.WriteString("</tr></thead>")
		r.open = blockTable
		return
	}
	if !r.tbody {
		r.buf.WriteString("<tbody>")
		r.tbody = true
	}
	if isTableSeparator(line) {
		return
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString("<td>" + FormatInline(cell) + "</td>")
	}
	r.buf.WriteString("</tr>")
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			r.fence(strings.TrimSpace(line)[3:])
			continue
		}
		if r.open == blockCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}
		r.line(line)
	}
	r.close()
}

func parseTableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	for _, cell := range parseTableCells(line) {
		if strings.Trim(cell, "-:") != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline escapes s and applies inline formatting: code spans, images,
// links, bold, italic and strikethrough.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)

	// Code spans become placeholders first so nothing inside them is formatted.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00C" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reImage.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		return `<img src="` + src + `" alt="` + match[1] + `" loading="lazy" decoding="async"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if isExternal(match[2]) {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		seg = reStrike.ReplaceAllString(seg, "<del>$1</del>")
		return seg
	})
	for i, code := range spans {
		escaped = strings.Replace(escaped, "\x00C"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

func isExternal(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(html.UnescapeString(raw)))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// SafeURL validates a URL for use in an HTML attribute and returns it
// escaped, or "" when it must not be emitted. Relative references are
// allowed; of absolute URLs only http, https, mailto and tel are.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "":
		if strings.Contains(strings.SplitN(val, "/", 2)[0], ":") {
			return ""
		}
		return html.EscapeString(val)
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
