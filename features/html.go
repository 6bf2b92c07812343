package features

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlText returns the visible text of an HTML document with whitespace
// collapsed. Script, style and head content is skipped.
func htmlText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil || doc == nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
