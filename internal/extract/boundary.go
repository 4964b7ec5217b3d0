package extract

import (
	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
)

// nextRun returns the subtree a text run continues into after n: the adjacent
// sibling when it is inline, or the adjacent sibling of the nearest inline
// ancestor that has one. A non-inline sibling or ancestor ends the run.
func (c *Classifier) nextRun(n *html.Node, dir model.Direction) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		sibling := cur.NextSibling
		if dir == model.Backward {
			sibling = cur.PrevSibling
		}
		if sibling != nil {
			if c.IsInline(sibling) {
				return sibling
			}
			return nil
		}
		if cur.Parent == nil || !c.IsInline(cur.Parent) {
			return nil
		}
	}
	return nil
}
