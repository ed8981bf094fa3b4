package views

import (
	"encoding/json"
	"html/template"
	"strings"
)

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// ThemeIcon is the toggle glyph shown for the current theme.
func ThemeIcon(theme string) string {
	if theme == "dark" {
		return "☀️"
	}
	return "🌙"
}

func jsonLD(data map[string]any) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

func person(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

// WebsiteJSONLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJSONLD(site Site) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      site.URL + site.BasePath,
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = person(site.Author)
	}
	return jsonLD(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block.
func BlogPostingJSONLD(site Site, title, description, date, pageURL string, tags []string) template.JS {
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      title,
		"datePublished": date,
		"url":           pageURL,
		"publisher":     map[string]string{"@type": "Organization", "name": site.Name},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   pageURL,
		},
	}
	if description != "" {
		data["description"] = description
	}
	if site.Author != "" {
		data["author"] = person(site.Author)
	}
	if len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	return jsonLD(data)
}
