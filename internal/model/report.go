package model

// AnchorSpec addresses an anchor in a document loaded by the CLI.
// Either Path (a text or editable node, see dom.Path) or Match must be set.
type AnchorSpec struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
	Match   string `yaml:"match,omitempty" json:"match,omitempty"`     // Text to search for in text nodes
	Nth     int    `yaml:"nth,omitempty" json:"nth,omitempty"`         // 0-based occurrence of Match
	Offset  int    `yaml:"offset,omitempty" json:"offset,omitempty"`   // Code units after the path start or match start
	Pointer Point  `yaml:"pointer,omitempty" json:"pointer,omitempty"` // Passed through to the lookup request
}

// SpanView is a Span with the node replaced by its document path
type SpanView struct {
	Path         string `json:"path"`
	AnchorOffset int    `json:"anchor_offset"`
	FarOffset    int    `json:"far_offset"`
	Text         string `json:"text"`
}

// Extraction is the printable form of a Result
type Extraction struct {
	Text  string     `json:"text"`
	Spans []SpanView `json:"spans"`
}

// Report is the outcome of preparing (and optionally looking up) one anchor
type Report struct {
	Source   string          `json:"source"`
	Spec     AnchorSpec      `json:"spec"`
	Anchor   string          `json:"anchor,omitempty"` // Path of the anchor node
	Offset   int             `json:"offset"`           // Anchor offset after whitespace skipping
	Reset    string          `json:"reset,omitempty"`  // Reset reason when no request was built
	Request  *LookupRequest  `json:"request,omitempty"`
	Forward  Extraction      `json:"forward"`
	Backward Extraction      `json:"backward"`
	Response *LookupResponse `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Dispatched reports whether the anchor produced a lookup request
func (r *Report) Dispatched() bool {
	return r.Request != nil
}
