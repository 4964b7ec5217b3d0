package dom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
)

// Parse parses an HTML document
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Contains reports whether n is root or one of its descendants
func Contains(root, n *html.Node) bool {
	if root == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// WithinAnnotation reports whether n is, or is a descendant of, an <rt> or <rp> node
func WithinAnnotation(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsAnnotation(cur) {
			return true
		}
	}
	return false
}

// Body returns the <body> element of a parsed document, or nil
func Body(doc *html.Node) *html.Node {
	w := NewTreeWalker(doc, func(n *html.Node) FilterResult {
		if n.Type == html.ElementNode && Tag(n) == "body" {
			return FilterAccept
		}
		return FilterSkip
	})
	return w.NextNode()
}

// TextNodes returns a walker that emits every text node under root
func TextNodes(root *html.Node) *TreeWalker {
	return NewTreeWalker(root, func(n *html.Node) FilterResult {
		if n.Type == html.TextNode {
			return FilterAccept
		}
		return FilterSkip
	})
}

// Find locates the nth (0-based) occurrence of needle inside a single text node
// under root and returns an anchor just before it
func Find(root *html.Node, needle string, nth int) (model.Anchor, bool) {
	if needle == "" || nth < 0 {
		return model.Anchor{}, false
	}
	seen := 0
	w := TextNodes(root)
	for n := w.NextNode(); n != nil; n = w.NextNode() {
		data := n.Data
		consumed := 0
		for {
			idx := strings.Index(data, needle)
			if idx < 0 {
				break
			}
			if seen == nth {
				return model.Anchor{Node: n, Offset: Len(n.Data[:consumed+idx])}, true
			}
			seen++
			step := idx + len(needle)
			consumed += step
			data = data[step:]
		}
	}
	return model.Anchor{}, false
}

// Path returns a stable location for n relative to its top-most ancestor, e.g.
// /html[1]/body[1]/p[2]/#text[1]. Indexes are 1-based among same-named siblings.
func Path(n *html.Node) string {
	var segments []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		name := segmentName(cur)
		idx := 1
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if segmentName(s) == name {
				idx++
			}
		}
		segments = append(segments, name+"["+strconv.Itoa(idx)+"]")
	}
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}

// Resolve finds the node addressed by a Path result, starting at root.
// A segment without an index means [1].
func Resolve(root *html.Node, path string) (*html.Node, error) {
	cur := root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		name, idx, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		var found *html.Node
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if segmentName(c) != name {
				continue
			}
			idx--
			if idx == 0 {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("no node for segment %q in %q", seg, path)
		}
		cur = found
	}
	return cur, nil
}

func segmentName(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DoctypeNode:
		return "#doctype"
	case html.ElementNode:
		return Tag(n)
	}
	return "#node"
}

func parseSegment(seg string) (string, int, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return strings.ToLower(seg), 1, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, fmt.Errorf("malformed path segment %q", seg)
	}
	idx, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || idx < 1 {
		return "", 0, fmt.Errorf("malformed index in path segment %q", seg)
	}
	return strings.ToLower(seg[:open]), idx, nil
}
