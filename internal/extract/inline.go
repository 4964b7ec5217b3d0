package extract

import (
	"strings"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/style"
	"golang.org/x/net/html"
)

// inlineTags are elements that continue a text run regardless of styling
var inlineTags = map[string]bool{
	// font style
	"font": true, "tt": true, "i": true, "b": true, "big": true, "small": true,
	"strike": true, "s": true, "u": true,

	// phrase
	"em": true, "strong": true, "dfn": true, "code": true, "samp": true,
	"kbd": true, "var": true, "cite": true, "abbr": true, "acronym": true,

	// special; img, object, br, script, map and bdo are left out
	"a": true, "q": true, "sub": true, "sup": true, "span": true, "wbr": true,

	// ruby
	"ruby": true, "rbc": true, "rtc": true, "rb": true, "rt": true, "rp": true,
}

// Classifier decides whether a node belongs to a continuous text run
type Classifier struct {
	styles style.Resolver
}

// NewClassifier creates a Classifier. A nil resolver means only the tag table counts.
func NewClassifier(styles style.Resolver) *Classifier {
	return &Classifier{styles: styles}
}

// IsInline reports whether n may be crossed without leaving the current run
func (c *Classifier) IsInline(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return true
	case html.ElementNode:
		if inlineTags[dom.Tag(n)] {
			return true
		}
		return c.styles != nil && strings.HasPrefix(c.styles.Display(n), "inline")
	}
	return false
}
