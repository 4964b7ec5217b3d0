// Package dom adapts golang.org/x/net/html trees to the node model used by the
// extraction engine: node kinds, UTF-16 text access, filtered traversal and
// stable node paths.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind classifies a node for extraction purposes
type Kind int

const (
	KindOther    Kind = iota // Document, doctype, raw nodes
	KindText                 // Text node; data is its content
	KindComment              // Comment node
	KindElement              // Element without an editable value
	KindEditable             // <input> or <textarea>; data is its value
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindElement:
		return "element"
	case KindEditable:
		return "editable"
	default:
		return "other"
	}
}

// textInputTypes lists <input type> values whose value is user text
var textInputTypes = map[string]bool{
	"":         true,
	"text":     true,
	"search":   true,
	"url":      true,
	"tel":      true,
	"email":    true,
	"password": true,
}

// KindOf returns the extraction kind of n
func KindOf(n *html.Node) Kind {
	if n == nil {
		return KindOther
	}
	switch n.Type {
	case html.TextNode:
		return KindText
	case html.CommentNode:
		return KindComment
	case html.ElementNode:
		if IsEditable(n) {
			return KindEditable
		}
		return KindElement
	}
	return KindOther
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
// Hand-built nodes without a DataAtom are handled too.
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if n.DataAtom != 0 {
		return n.DataAtom.String()
	}
	return strings.ToLower(n.Data)
}

// IsEditable reports whether n is a text-editing form control
func IsEditable(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch Tag(n) {
	case atom.Textarea.String():
		return true
	case atom.Input.String():
		typ, _ := Attr(n, "type")
		return textInputTypes[strings.ToLower(strings.TrimSpace(typ))]
	}
	return false
}

// IsAnnotation reports whether n is a ruby pronunciation node (<rt> or <rp>)
func IsAnnotation(n *html.Node) bool {
	switch Tag(n) {
	case atom.Rt.String(), atom.Rp.String():
		return true
	}
	return false
}

// Attr returns the value of the named attribute
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// Value returns the current value of an editable control
func Value(n *html.Node) string {
	if Tag(n) == atom.Textarea.String() {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return b.String()
	}
	v, _ := Attr(n, "value")
	return v
}

// Text returns the text of n as UTF-16 code units: the data of a text node or
// the value of an editable control. Other nodes have no text.
func Text(n *html.Node) []uint16 {
	switch KindOf(n) {
	case KindText:
		return Units(n.Data)
	case KindEditable:
		return Units(Value(n))
	}
	return nil
}
