// Package highlight marks the text a lookup consumed, using the spans the
// extraction recorded.
package highlight

import (
	"slices"
	"strconv"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// Class is set on every <mark> created by Apply
	Class = "hoverlex"
	// SelectionAttr holds "start,end" on editable nodes
	SelectionAttr = "data-hoverlex-selection"
)

// Select returns the leading spans that cover the first n code units of the
// extracted text. The last span is shortened to end exactly at n.
func Select(spans []model.Span, n int) []model.Span {
	var out []model.Span
	for _, s := range spans {
		if n <= 0 {
			break
		}
		l := s.Len()
		if l == 0 {
			continue
		}
		if l > n {
			if s.FarOffset >= s.AnchorOffset {
				s.FarOffset = s.AnchorOffset + n
			} else {
				s.FarOffset = s.AnchorOffset - n
			}
			l = n
		}
		out = append(out, s)
		n -= l
	}
	return out
}

// Apply wraps each span range of a text node in <mark class="hoverlex"> and
// records the range on editable nodes. It returns the created marks in
// document order. Spans must not overlap.
func Apply(spans []model.Span) []*html.Node {
	byNode := make(map[*html.Node][]model.Span)
	var order []*html.Node
	for _, s := range spans {
		if s.Node == nil || s.Len() == 0 {
			continue
		}
		if _, ok := byNode[s.Node]; !ok {
			order = append(order, s.Node)
		}
		byNode[s.Node] = append(byNode[s.Node], s)
	}

	var marks []*html.Node
	for _, n := range order {
		switch dom.KindOf(n) {
		case dom.KindText:
			marks = append(marks, wrap(n, byNode[n])...)
		case dom.KindEditable:
			select1(n, byNode[n])
		}
	}
	return marks
}

// wrap splits text node t around each range, last range first so that t
// always keeps the untouched prefix
func wrap(t *html.Node, spans []model.Span) []*html.Node {
	if t.Parent == nil {
		return nil
	}
	slices.SortFunc(spans, func(a, b model.Span) int { return b.Start() - a.Start() })

	var marks []*html.Node
	for _, s := range spans {
		units := dom.Units(t.Data)
		start, end := s.Start(), min(s.End(), len(units))
		if start >= end {
			continue
		}

		mark := &html.Node{
			Type:     html.ElementNode,
			Data:     "mark",
			DataAtom: atom.Mark,
			Attr:     []html.Attribute{{Key: "class", Val: Class}},
		}
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: dom.String(units[start:end])})

		next := t.NextSibling
		t.Parent.InsertBefore(mark, next)
		if end < len(units) {
			t.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: dom.String(units[end:])}, next)
		}
		t.Data = dom.String(units[:start])
		marks = append(marks, mark)
	}

	if t.Data == "" {
		t.Parent.RemoveChild(t)
	}
	slices.Reverse(marks)
	return marks
}

// select1 records the union of the ranges on an editable node
func select1(n *html.Node, spans []model.Span) {
	start, end := spans[0].Start(), spans[0].End()
	for _, s := range spans[1:] {
		start = min(start, s.Start())
		end = max(end, s.End())
	}
	setAttr(n, SelectionAttr, strconv.Itoa(start)+","+strconv.Itoa(end))
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key && n.Attr[i].Namespace == "" {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
