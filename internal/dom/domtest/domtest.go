// Package domtest builds small html.Node trees for tests.
package domtest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text returns a detached text node
func Text(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// Comment returns a detached comment node
func Comment(data string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: data}
}

// El returns an element with the given children appended in order
func El(tag string, children ...*html.Node) *html.Node {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// ElAttr returns an element carrying attributes given as key, value pairs
func ElAttr(tag string, attrs []string, children ...*html.Node) *html.Node {
	n := El(tag, children...)
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Doc wraps children in a document node
func Doc(children ...*html.Node) *html.Node {
	d := &html.Node{Type: html.DocumentNode}
	for _, c := range children {
		d.AppendChild(c)
	}
	return d
}

// Nest wraps leaf in depth elements of the given tag
func Nest(tag string, depth int, leaf *html.Node) *html.Node {
	n := leaf
	for i := 0; i < depth; i++ {
		n = El(tag, n)
	}
	return n
}

// MustParse parses a document and panics on error
func MustParse(src string) *html.Node {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return doc
}
