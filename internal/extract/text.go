package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// TextExtractor turns an HTML page into the plain text a reader would see
type TextExtractor struct {
	maxChars int
}

// NewTextExtractor creates an extractor. maxChars <= 0 disables truncation.
func NewTextExtractor(maxChars int) *TextExtractor {
	return &TextExtractor{maxChars: maxChars}
}

// Extract returns the visible text of the page's main content.
// The main content is the first <main>, <article> or #mw-content-text
// element; when none exists the whole document is used.
func (e *TextExtractor) Extract(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := findContentRoot(doc)
	if root == nil {
		root = doc
	}

	text := normalizeSpace(extractVisibleText(root))
	return Truncate(text, e.maxChars), nil
}

func findContentRoot(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if n.Data == "main" || n.Data == "article" || attr(n, "id") == "mw-content-text" {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findContentRoot(c); found != nil {
			return found
		}
	}
	return nil
}

// extractVisibleText collects text nodes, skipping non-content elements
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "template", "svg":
				return
			case "sup":
				// citation markers like [1]
				if hasClass(n, "reference") {
					return
				}
			case "table":
				if hasClass(n, "infobox") || hasClass(n, "navbox") {
					return
				}
			}
			if attr(n, "aria-hidden") == "true" || hasAttr(n, "hidden") {
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// Truncate cuts text to at most maxChars bytes, ending on a sentence
// boundary when one exists in the kept part
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	cut := text[:maxChars]
	for !utf8Boundary(text, len(cut)) {
		cut = cut[:len(cut)-1]
	}

	if end := lastSentenceEnd(cut); end > 0 {
		return cut[:end]
	}
	return strings.TrimSpace(cut)
}

// lastSentenceEnd returns the index just past the last terminator that is
// followed by whitespace, or -1
func lastSentenceEnd(text string) int {
	for i := len(text) - 2; i >= 0; i-- {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' {
				return i + 1
			}
		}
	}
	return -1
}

func utf8Boundary(s string, i int) bool {
	return i == 0 || i >= len(s) || s[i]&0xC0 != 0x80
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
