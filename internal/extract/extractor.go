// Package extract pulls a bounded run of text out of an HTML tree on either
// side of an anchor, following inline markup and skipping ruby annotations,
// and records which node ranges produced each part of the result.
package extract

import (
	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/ppiankov/hoverlex/internal/style"
	"github.com/rs/zerolog"
)

// Extractor runs range extractions. It holds no per-call state and can be
// shared by goroutines extracting from the same immutable tree.
type Extractor struct {
	classifier *Classifier
	maxLength  int
	log        zerolog.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMaxLength sets the code unit budget per direction
func WithMaxLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxLength = n
		}
	}
}

// WithLogger sets the logger used for debug tracing
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.log = l
	}
}

// New creates an Extractor using styles to decide inline-ness
func New(styles style.Resolver, opts ...Option) *Extractor {
	e := &Extractor{
		classifier: NewClassifier(styles),
		maxLength:  model.MaxWordLength,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxLength returns the code unit budget per direction
func (e *Extractor) MaxLength() int {
	return e.maxLength
}

// Classifier returns the inline classifier in use
func (e *Extractor) Classifier() *Classifier {
	return e.classifier
}

// Extract collects up to MaxLength code units from the anchor in one direction.
// Backward results read in document order. Anchors that are neither text nor
// editable, or that sit inside a ruby annotation, give an empty result.
func (e *Extractor) Extract(anchor model.Anchor, dir model.Direction) model.Result {
	var acc accumulator
	offset := max(anchor.Offset, 0)

	switch dom.KindOf(anchor.Node) {
	case dom.KindEditable:
		acc.collect(anchor.Node, e.maxLength, dir, offset)
		return acc.result(dir)
	case dom.KindText:
	default:
		e.log.Debug().Str("direction", dir.String()).Msg("anchor is not a text node")
		return model.Result{}
	}

	if dom.WithinAnnotation(anchor.Node) {
		e.log.Debug().Str("direction", dir.String()).Msg("anchor inside ruby annotation")
		return model.Result{}
	}

	length := acc.collect(anchor.Node, e.maxLength, dir, offset)
	current := anchor.Node
	for next := e.classifier.nextRun(current, dir); next != nil && length < e.maxLength; next = e.classifier.nextRun(current, dir) {
		length += acc.drain(next, e.maxLength-length, dir)
		current = next
	}

	return acc.result(dir)
}

// Both runs a forward and a backward extraction from the same anchor
func (e *Extractor) Both(anchor model.Anchor) (forward, backward model.Result) {
	return e.Extract(anchor, model.Forward), e.Extract(anchor, model.Backward)
}
