// Package lookup decides whether a pointer anchor is worth a dictionary
// lookup, extracts the text around it and hands the request to a lookup
// service without waiting for the answer.
package lookup

import (
	"strings"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/extract"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// ResetReason says why an anchor did not lead to a lookup
type ResetReason string

const (
	ResetNone            ResetReason = ""
	ResetNoAnchor        ResetReason = "no-anchor"         // No anchor given and none remembered
	ResetDetached        ResetReason = "detached"          // Anchor node is not in the session document
	ResetOutOfRange      ResetReason = "out-of-range"      // Offset past the end of the node's text
	ResetNotLookupWorthy ResetReason = "not-lookup-worthy" // Character at the anchor is outside the lookup scripts
	ResetEmptyText       ResetReason = "empty-text"        // Nothing but whitespace after the anchor
)

// Session is caller-owned state shared across triggers
type Session struct {
	Document   *html.Node    // Live tree; anchors outside it are stale
	LastAnchor *model.Anchor // Last anchor whose lookup was shown
	Pointer    model.Point
}

// Remember records a as the anchor to reuse when a trigger has none
func (s *Session) Remember(a model.Anchor) {
	s.LastAnchor = &a
}

// Forget drops the remembered anchor
func (s *Session) Forget() {
	s.LastAnchor = nil
}

// Prepared is a validated lookup ready for dispatch
type Prepared struct {
	Request  model.LookupRequest
	Anchor   model.Anchor // Anchor after whitespace skipping
	Forward  model.Result
	Backward model.Result
}

// Reply receives the lookup answer with the spans of both extractions, in
// that order: forward, then backward
type Reply func(resp *model.LookupResponse, err error, forward, backward []model.Span)

// Dispatcher hands a request to the lookup service and returns immediately.
// done is called exactly once when the service answers or fails.
type Dispatcher interface {
	Dispatch(req model.LookupRequest, done func(*model.LookupResponse, error))
}

// Resetter clears whatever the previous lookup left on screen
type Resetter interface {
	Reset()
}

// ResetFunc adapts a function to a Resetter
type ResetFunc func()

// Reset calls f()
func (f ResetFunc) Reset() {
	f()
}

// Outcome reports what a trigger did
type Outcome struct {
	Dispatched bool
	Reason     ResetReason
	Prepared   *Prepared
}

// Gate validates anchors and dispatches lookups
type Gate struct {
	extractor  *extract.Extractor
	dispatcher Dispatcher
	resetter   Resetter
	log        zerolog.Logger
}

// NewGate creates a Gate. dispatcher and resetter may be nil.
func NewGate(extractor *extract.Extractor, dispatcher Dispatcher, resetter Resetter, log zerolog.Logger) *Gate {
	return &Gate{
		extractor:  extractor,
		dispatcher: dispatcher,
		resetter:   resetter,
		log:        log,
	}
}

// Prepare validates the anchor and extracts text on both sides of it.
// A nil anchor falls back to the session's last anchor.
func (g *Gate) Prepare(s *Session, opts model.Options, anchor *model.Anchor) (*Prepared, ResetReason) {
	if s == nil {
		s = &Session{}
	}
	if anchor == nil {
		anchor = s.LastAnchor
	}
	if anchor == nil || anchor.Node == nil {
		return nil, ResetNoAnchor
	}
	if !dom.Contains(s.Document, anchor.Node) {
		return nil, ResetDetached
	}

	a := *anchor
	data := dom.Text(a.Node)

	// Whitespace is one code unit in every case seen so far, so skip exactly one.
	if a.Offset >= 0 && a.Offset < len(data) && isSpace(rune(data[a.Offset])) {
		a.Offset++
	}
	if a.Offset < 0 || a.Offset >= len(data) {
		return nil, ResetOutOfRange
	}

	if r, _ := dom.CodePointAt(data, a.Offset); !IsLookupWorthy(r) {
		return nil, ResetNotLookupWorthy
	}

	forward := g.extractor.Extract(a, model.Forward)
	text := trim(forward.Text)
	if text == "" {
		return nil, ResetEmptyText
	}

	backward := g.extractor.Extract(a, model.Backward)
	prefix := trim(backward.Text)
	if !strings.HasSuffix(backward.Text, prefix) {
		prefix = ""
	}

	return &Prepared{
		Request: model.LookupRequest{
			Text:    text,
			Prefix:  prefix,
			Pointer: s.Pointer,
			Options: opts,
		},
		Anchor:   a,
		Forward:  forward,
		Backward: backward,
	}, ResetNone
}

// Trigger prepares a lookup and dispatches it, or resets when the anchor is
// not worth looking up. reply may be nil.
func (g *Gate) Trigger(s *Session, opts model.Options, anchor *model.Anchor, reply Reply) Outcome {
	p, reason := g.Prepare(s, opts, anchor)
	if reason != ResetNone {
		g.log.Debug().Str("reason", string(reason)).Msg("lookup reset")
		if g.resetter != nil {
			g.resetter.Reset()
		}
		return Outcome{Reason: reason}
	}

	g.log.Debug().
		Str("text", p.Request.Text).
		Str("prefix", p.Request.Prefix).
		Int("forward_spans", len(p.Forward.Spans)).
		Int("backward_spans", len(p.Backward.Spans)).
		Msg("lookup dispatched")

	if g.dispatcher != nil {
		forward, backward := p.Forward.Spans, p.Backward.Spans
		g.dispatcher.Dispatch(p.Request, func(resp *model.LookupResponse, err error) {
			if reply != nil {
				reply(resp, err, forward, backward)
			}
		})
	}
	return Outcome{Dispatched: true, Prepared: p}
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}
