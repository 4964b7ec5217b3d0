package highlight

import (
	"github.com/ppiankov/hoverlex/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Clear undoes Apply under root: marks are unwrapped, the text nodes they
// split are merged back and editable selections are dropped. It returns the
// number of marks removed.
func Clear(root *html.Node) int {
	var marks, editables []*html.Node
	for n := range root.Descendants() {
		switch {
		case isMark(n):
			marks = append(marks, n)
		case dom.IsEditable(n):
			editables = append(editables, n)
		}
	}

	for _, m := range marks {
		parent := m.Parent
		prev, next := m.PrevSibling, m.NextSibling
		for c := m.FirstChild; c != nil; {
			following := c.NextSibling
			m.RemoveChild(c)
			parent.InsertBefore(c, m)
			c = following
		}
		parent.RemoveChild(m)

		start := parent.FirstChild
		if prev != nil {
			start = prev
		}
		mergeText(start, next)
	}

	for _, e := range editables {
		removeAttr(e, SelectionAttr)
	}
	return len(marks)
}

// Highlighter clears a document's marks when the gate resets
type Highlighter struct {
	Root *html.Node
}

// Reset removes every mark under h.Root
func (h Highlighter) Reset() {
	if h.Root != nil {
		Clear(h.Root)
	}
}

func isMark(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Mark {
		return false
	}
	class, _ := dom.Attr(n, "class")
	return class == Class
}

// mergeText joins adjacent text nodes from first through last.
// A nil last runs to the end of the sibling list.
func mergeText(first, last *html.Node) {
	n := first
	for n != nil && n != last {
		next := n.NextSibling
		if next == nil {
			return
		}
		if n.Type == html.TextNode && next.Type == html.TextNode {
			n.Data += next.Data
			n.Parent.RemoveChild(next)
			if next == last {
				return
			}
			continue
		}
		n = next
	}
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}
