package extract

import (
	"strings"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
)

// fromEdge asks collect to start at the natural edge of the node:
// offset 0 going forward, the end of the data going backward
const fromEdge = -1

// accumulator gathers chunks and their spans in encounter order
type accumulator struct {
	chunks []string
	spans  []model.Span
}

// collect takes up to maxLength code units from n starting at offset and
// returns how many it took
func (a *accumulator) collect(n *html.Node, maxLength int, dir model.Direction, offset int) int {
	data := dom.Text(n)
	if maxLength < 0 {
		maxLength = 0
	}

	var from, to int
	if dir == model.Forward {
		if offset == fromEdge {
			offset = 0
		}
		offset = clamp(offset, 0, len(data))
		from, to = offset, min(len(data), offset+maxLength)
		a.spans = append(a.spans, model.Span{Node: n, AnchorOffset: offset, FarOffset: to})
	} else {
		if offset == fromEdge {
			offset = len(data)
		}
		offset = clamp(offset, 0, len(data))
		from, to = max(0, offset-maxLength), offset
		a.spans = append(a.spans, model.Span{Node: n, AnchorOffset: offset, FarOffset: from})
	}

	a.chunks = append(a.chunks, dom.String(data[from:to]))
	return to - from
}

// result assembles the collected chunks. Backward chunks were gathered in
// reverse document order, so both chunks and spans are flipped first.
func (a *accumulator) result(dir model.Direction) model.Result {
	if dir == model.Backward {
		reverse(a.chunks)
		reverse(a.spans)
	}
	return model.Result{
		Text:  strings.Join(a.chunks, ""),
		Spans: a.spans,
	}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
