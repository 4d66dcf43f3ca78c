// Package markup normalizes user supplied comment text.
package markup

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern looks for common opening tags like <p>, <br>, <div>, <b>.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|pre|code)[\s>/]`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML content to Markdown.
// Text without HTML is returned unchanged, and so is text the converter rejects.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(markdown)
}

// Render returns the Markdown form of s when s contains HTML, and "" when
// the text needs no rendering.
func Render(s string) string {
	if !ContainsHTML(s) {
		return ""
	}
	return ToMarkdown(s)
}
