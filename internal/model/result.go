package model

import "golang.org/x/net/html"

// Span maps a slice of extracted text back to the node that produced it.
// AnchorOffset is where collection started inside Node, FarOffset where it stopped.
// For Backward spans FarOffset <= AnchorOffset.
type Span struct {
	Node         *html.Node
	AnchorOffset int
	FarOffset    int
}

// Len returns the number of code units covered by the span
func (s Span) Len() int {
	if s.FarOffset < s.AnchorOffset {
		return s.AnchorOffset - s.FarOffset
	}
	return s.FarOffset - s.AnchorOffset
}

// Start returns the lower offset of the span in document order
func (s Span) Start() int {
	return min(s.AnchorOffset, s.FarOffset)
}

// End returns the upper offset of the span in document order
func (s Span) End() int {
	return max(s.AnchorOffset, s.FarOffset)
}

// Result is the output of one directional extraction
type Result struct {
	Text  string
	Spans []Span
}

// Empty reports whether nothing was extracted
func (r Result) Empty() bool {
	return r.Text == "" && len(r.Spans) == 0
}
