package ingest

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements never contribute text.
var dropped = []atom.Atom{atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header, atom.Aside}

// selector matches one element; exactly one of tag, class, or id is set.
type selector struct {
	tag   atom.Atom
	class string
	id    string
}

func (s selector) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch {
	case s.tag != 0:
		return n.DataAtom == s.tag
	case s.class != "":
		return slices.Contains(strings.Fields(attr(n, "class")), s.class)
	default:
		return attr(n, "id") == s.id
	}
}

// contentSelectors are tried in order; the first matching element is the
// article body.
var contentSelectors = []selector{
	{tag: atom.Article},
	{tag: atom.Main},
	{class: "content"},
	{class: "post-content"},
	{class: "article-body"},
	{id: "content"},
}

// ExtractArticle parses an HTML document and returns the readable text of
// its main content area, falling back to the whole body.
func ExtractArticle(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	prune(doc)

	root := findContent(doc)
	if root == nil {
		return "", nil
	}
	return keepLines(textLines(root)), nil
}

func findContent(doc *html.Node) *html.Node {
	for _, sel := range contentSelectors {
		if n := find(doc, sel.match); n != nil {
			return n
		}
	}
	return find(doc, selector{tag: atom.Body}.match)
}

// find returns the first node in document order for which match is true.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// prune removes every dropped element from the tree.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && slices.Contains(dropped, c.DataAtom) {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

// blocks end a line of text; inline elements do not.
var blocks = []atom.Atom{
	atom.P, atom.Div, atom.Li, atom.Br, atom.Tr, atom.Td, atom.Th,
	atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
	atom.Section, atom.Article, atom.Main, atom.Blockquote, atom.Pre,
	atom.Ul, atom.Ol, atom.Dl, atom.Dt, atom.Dd, atom.Table, atom.Figcaption,
}

// textLines collects the text under n, one line per block element, with
// whitespace runs inside a line collapsed.
func textLines(n *html.Node) []string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if l := strings.Join(strings.Fields(cur.String()), " "); l != "" {
			lines = append(lines, l)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
			return
		}
		block := n.Type == html.ElementNode && slices.Contains(blocks, n.DataAtom)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(n)
	flush()
	return lines
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
