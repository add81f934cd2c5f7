package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor converts an HTML page into readable plain text, keeping
// block structure so question/answer passages survive as separate lines.
type HTMLExtractor struct{}

func (h *HTMLExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var builder strings.Builder
	var title string
	walkHTML(doc, &builder, &title)

	text := collapseBlankLines(builder.String())

	metadata := map[string]string{
		"type":       "html",
		"characters": fmt.Sprintf("%d", len(text)),
		"title":      title,
	}
	return text, metadata, nil
}

func walkHTML(n *html.Node, w io.Writer, title *string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		// Chrome of the page, not content.
		case "script", "style", "noscript", "nav", "header", "footer", "aside", "form", "iframe":
			return
		case "title":
			if *title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				*title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if n.Parent != nil && isBlockElement(n.Parent.Data) {
				fmt.Fprintf(w, "\n%s\n", text)
			} else {
				fmt.Fprintf(w, " %s ", text)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, w, title)
	}

	// Anchors keep their markdown shape so the link extractor downstream
	// sees both the anchor text and the target.
	if n.Type == html.ElementNode && n.Data == "a" {
		if href := attrValue(n, "href"); strings.HasPrefix(href, "http") {
			fmt.Fprintf(w, " [%s](%s) ", anchorText(n), href)
		}
	}
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func anchorText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li",
		"blockquote", "article", "section", "main", "pre", "td", "th", "dt", "dd":
		return true
	}
	return false
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
