// Package style supplies the computed CSS display value of elements. The
// extraction engine only needs to know whether an element renders inline, so
// the value is behind a small interface that tests can fake.
package style

import (
	"strings"

	"github.com/ppiankov/hoverlex/internal/dom"
	"golang.org/x/net/html"
)

// Resolver returns the computed display value of an element
type Resolver interface {
	Display(n *html.Node) string
}

// ResolverFunc adapts a function to a Resolver
type ResolverFunc func(n *html.Node) string

// Display calls f(n)
func (f ResolverFunc) Display(n *html.Node) string {
	return f(n)
}

// DefaultResolver derives display from user-agent defaults, the hidden
// attribute and a display declaration in the element's style attribute.
// Stylesheets are not evaluated.
type DefaultResolver struct{}

// NewDefaultResolver creates a DefaultResolver
func NewDefaultResolver() *DefaultResolver {
	return &DefaultResolver{}
}

// Display implements Resolver
func (DefaultResolver) Display(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if v, ok := dom.Attr(n, "style"); ok {
		if d := declaredDisplay(v); d != "" {
			return d
		}
	}
	if _, hidden := dom.Attr(n, "hidden"); hidden {
		return "none"
	}
	return DefaultDisplay(dom.Tag(n))
}

// declaredDisplay returns the last display declaration in an inline style
func declaredDisplay(style string) string {
	display := ""
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		val = strings.ToLower(strings.TrimSpace(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		if val != "" {
			display = val
		}
	}
	return display
}
