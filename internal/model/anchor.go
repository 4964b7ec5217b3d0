package model

import "golang.org/x/net/html"

// Direction is the scan order of an extraction
type Direction int

const (
	Forward  Direction = iota // Reading order
	Backward                  // Reverse reading order
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// Anchor is a position just before the Offset-th UTF-16 code unit of Node's text.
// Node identity is pointer identity: two text nodes with equal data are different anchors.
type Anchor struct {
	Node   *html.Node
	Offset int
}

// Point is a pointer position in screen coordinates
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}
