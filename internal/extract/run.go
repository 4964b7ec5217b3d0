package extract

import (
	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
)

// annotationFilter hides ruby annotations entirely and emits text leaves only
func annotationFilter(n *html.Node) dom.FilterResult {
	switch n.Type {
	case html.ElementNode:
		if dom.IsAnnotation(n) {
			return dom.FilterReject
		}
		return dom.FilterSkip
	case html.TextNode:
		return dom.FilterAccept
	}
	return dom.FilterSkip
}

// drain collects text from the inline subtree at root until maxLength code
// units are gathered or the subtree runs out
func (a *accumulator) drain(root *html.Node, maxLength int, dir model.Direction) int {
	if root.Type == html.CommentNode || dom.IsAnnotation(root) {
		return 0
	}
	if root.Type == html.TextNode {
		return a.collect(root, maxLength, dir, fromEdge)
	}

	w := dom.NewTreeWalker(root, annotationFilter)
	start, step := w.FirstChild, w.NextNode
	if dir == model.Backward {
		start, step = w.LastChild, w.PreviousNode
	}
	n := start()

	length := 0
	for length < maxLength && n != nil {
		length += a.collect(n, maxLength-length, dir, fromEdge)
		n = step()
	}
	return length
}
