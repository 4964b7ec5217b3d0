package model

// Options are caller-supplied lookup options passed through to the lookup service untouched
type Options struct {
	Dictionary int    `json:"dictionary" yaml:"dictionary"`         // Index of the dictionary to consult
	Language   string `json:"language,omitempty" yaml:"language"` // Optional language hint for the service
}

// LookupRequest is the payload handed to the external lookup service
type LookupRequest struct {
	Text    string  `json:"text"`   // Trimmed forward text starting at the anchor
	Prefix  string  `json:"prefix"` // Trimmed backward text ending at the anchor (may be empty)
	Pointer Point   `json:"pointer"`
	Options Options `json:"options"`
}

// Entry is one dictionary entry returned by a lookup service
type Entry struct {
	Word    string   `json:"word"`
	Reading string   `json:"reading,omitempty"`
	Glosses []string `json:"glosses,omitempty"`
}

// LookupResponse is what a lookup service answers
type LookupResponse struct {
	MatchLength int     `json:"match_length"` // Code units of Text consumed by the best match
	Entries     []Entry `json:"entries"`
	Source      string  `json:"source,omitempty"` // Which backend answered
}
