package dom

import "golang.org/x/net/html"

// FilterResult is a per-node traversal decision
type FilterResult int

const (
	FilterAccept FilterResult = iota // Emit the node
	FilterSkip                       // Do not emit the node, but visit its children
	FilterReject                     // Do not emit the node or anything below it
)

// Filter decides how a TreeWalker treats a node
type Filter func(n *html.Node) FilterResult

// TreeWalker walks the descendants of a root in document order, emitting only
// accepted nodes. It follows the DOM TreeWalker algorithms and never recurses,
// so stack usage does not depend on tree depth.
type TreeWalker struct {
	root    *html.Node
	current *html.Node
	filter  Filter
}

// NewTreeWalker creates a walker positioned at root
func NewTreeWalker(root *html.Node, filter Filter) *TreeWalker {
	if filter == nil {
		filter = func(*html.Node) FilterResult { return FilterAccept }
	}
	return &TreeWalker{
		root:    root,
		current: root,
		filter:  filter,
	}
}

// Root returns the subtree root
func (w *TreeWalker) Root() *html.Node {
	return w.root
}

// Current returns the node the walker is positioned at
func (w *TreeWalker) Current() *html.Node {
	return w.current
}

// FirstChild moves to the first accepted child of the current node
func (w *TreeWalker) FirstChild() *html.Node {
	return w.traverseChildren(true)
}

// LastChild moves to the last accepted child of the current node
func (w *TreeWalker) LastChild() *html.Node {
	return w.traverseChildren(false)
}

func (w *TreeWalker) traverseChildren(first bool) *html.Node {
	node := edgeChild(w.current, first)
	for node != nil {
		switch w.filter(node) {
		case FilterAccept:
			w.current = node
			return node
		case FilterSkip:
			if child := edgeChild(node, first); child != nil {
				node = child
				continue
			}
		}
		for {
			if sibling := adjacent(node, first); sibling != nil {
				node = sibling
				break
			}
			parent := node.Parent
			if parent == nil || parent == w.root || parent == w.current {
				return nil
			}
			node = parent
		}
	}
	return nil
}

// NextNode moves to the next accepted node in document order
func (w *TreeWalker) NextNode() *html.Node {
	node := w.current
	result := FilterAccept
	for {
		for result != FilterReject && node.FirstChild != nil {
			node = node.FirstChild
			result = w.filter(node)
			if result == FilterAccept {
				w.current = node
				return node
			}
		}

		var sibling *html.Node
		for tmp := node; tmp != nil; tmp = tmp.Parent {
			if tmp == w.root {
				return nil
			}
			if sibling = tmp.NextSibling; sibling != nil {
				break
			}
		}
		if sibling == nil {
			return nil
		}

		node = sibling
		result = w.filter(node)
		if result == FilterAccept {
			w.current = node
			return node
		}
	}
}

// PreviousNode moves to the previous accepted node in document order
func (w *TreeWalker) PreviousNode() *html.Node {
	node := w.current
	for node != w.root {
		for sibling := node.PrevSibling; sibling != nil; sibling = node.PrevSibling {
			node = sibling
			result := w.filter(node)
			for result != FilterReject && node.LastChild != nil {
				node = node.LastChild
				result = w.filter(node)
			}
			if result == FilterAccept {
				w.current = node
				return node
			}
		}

		if node.Parent == nil {
			return nil
		}
		node = node.Parent
		if node == w.root {
			return nil
		}
		if w.filter(node) == FilterAccept {
			w.current = node
			return node
		}
	}
	return nil
}

func edgeChild(n *html.Node, first bool) *html.Node {
	if first {
		return n.FirstChild
	}
	return n.LastChild
}

func adjacent(n *html.Node, next bool) *html.Node {
	if next {
		return n.NextSibling
	}
	return n.PrevSibling
}
