// Package pipeline loads documents, resolves anchor specs and runs them
// through the anchor gate for the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/extract"
	"github.com/ppiankov/hoverlex/internal/highlight"
	"github.com/ppiankov/hoverlex/internal/lookup"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/ppiankov/hoverlex/internal/service"
	"github.com/ppiankov/hoverlex/internal/style"
	"github.com/ppiankov/hoverlex/internal/worker"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// ErrNoReply is reported when the lookup service does not answer in time
var ErrNoReply = errors.New("no reply from lookup service")

// Document is a parsed page. Session carries the last highlighted anchor
// between Lookup calls; Lookup must not run concurrently on one Document.
type Document struct {
	Source  string
	Charset string
	Root    *html.Node
	Session *lookup.Session
}

func newDocument(source, charset string, root *html.Node) *Document {
	return &Document{
		Source:  source,
		Charset: charset,
		Root:    root,
		Session: &lookup.Session{Document: root},
	}
}

// Pipeline wires fetching, extraction and lookup together
type Pipeline struct {
	fetcher   *Fetcher
	extractor *extract.Extractor
	gate      *lookup.Gate // Prepare only; never dispatches
	svc       service.Service
	cfg       *model.Config
	log       zerolog.Logger
}

// New creates a pipeline. svc may be nil when lookups are disabled.
func New(cfg *model.Config, svc service.Service, log zerolog.Logger) (*Pipeline, error) {
	styles, err := style.New(cfg.Style.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create style resolver: %w", err)
	}

	extractor := extract.New(styles,
		extract.WithMaxLength(cfg.Extract.MaxWordLength),
		extract.WithLogger(log),
	)

	return &Pipeline{
		fetcher:   NewFetcher(cfg.HTTP, log),
		extractor: extractor,
		gate:      lookup.NewGate(extractor, nil, nil, log),
		svc:       svc,
		cfg:       cfg,
		log:       log,
	}, nil
}

// Load reads a document from an http(s) URL, a file path, or "-" for stdin
func (p *Pipeline) Load(ctx context.Context, source string) (*Document, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		res, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		root, err := dom.Parse(strings.NewReader(res.HTML))
		if err != nil {
			return nil, err
		}
		p.log.Debug().Str("url", res.FinalURL).Str("charset", res.Charset).Msg("document fetched")
		return newDocument(res.FinalURL, res.Charset, root), nil
	}

	var (
		raw []byte
		err error
	)
	if source == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	text, name, err := decodeHTML(raw, "")
	if err != nil {
		return nil, err
	}
	root, err := dom.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return newDocument(source, name, root), nil
}

// Locate resolves spec to an anchor in doc. Match is searched under <body>.
func (p *Pipeline) Locate(doc *Document, spec model.AnchorSpec) (model.Anchor, error) {
	switch {
	case spec.Path != "":
		n, err := dom.Resolve(doc.Root, spec.Path)
		if err != nil {
			return model.Anchor{}, fmt.Errorf("resolve path: %w", err)
		}
		return model.Anchor{Node: n, Offset: spec.Offset}, nil

	case spec.Match != "":
		root := dom.Body(doc.Root)
		if root == nil {
			root = doc.Root
		}
		a, ok := dom.Find(root, spec.Match, spec.Nth)
		if !ok {
			return model.Anchor{}, fmt.Errorf("match %q (occurrence %d) not found", spec.Match, spec.Nth)
		}
		a.Offset += spec.Offset
		return a, nil

	default:
		return model.Anchor{}, errors.New("anchor spec needs a path or a match")
	}
}

// Prepare runs the gate on spec without dispatching. The report always
// carries both extractions; Request is set only when the gate accepted.
func (p *Pipeline) Prepare(doc *Document, spec model.AnchorSpec) *model.Report {
	report := &model.Report{Source: doc.Source, Spec: spec}

	anchor, err := p.Locate(doc, spec)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	session := &lookup.Session{Document: doc.Root, Pointer: spec.Pointer}
	prepared, reason := p.gate.Prepare(session, p.cfg.LookupOptions(), &anchor)
	if reason != lookup.ResetNone {
		forward, backward := p.extractor.Both(anchor)
		fill(report, anchor, forward, backward)
		report.Reset = string(reason)
		return report
	}

	fill(report, prepared.Anchor, prepared.Forward, prepared.Backward)
	req := prepared.Request
	report.Request = &req
	return report
}

// Lookup triggers the gate for spec, waits for the service's continuation and
// highlights the matched text in doc. A spec with neither Path nor Match
// looks up the anchor remembered from the last highlighted match.
func (p *Pipeline) Lookup(ctx context.Context, doc *Document, spec model.AnchorSpec) *model.Report {
	report := &model.Report{Source: doc.Source, Spec: spec}

	if doc.Session == nil {
		doc.Session = &lookup.Session{Document: doc.Root}
	}
	session := doc.Session
	session.Pointer = spec.Pointer

	var target *model.Anchor
	if spec.Path != "" || spec.Match != "" {
		anchor, err := p.Locate(doc, spec)
		if err != nil {
			report.Error = err.Error()
			return report
		}
		target = &anchor
	} else if session.LastAnchor != nil {
		anchor := *session.LastAnchor
		target = &anchor
	}

	// A reset clears marks and merges text nodes, so the report is taken first
	if target != nil {
		forward, backward := p.extractor.Both(*target)
		fill(report, *target, forward, backward)
	}

	timeout := p.cfg.Lookup.Timeout
	dispatcher := service.NewAsyncDispatcher(ctx, p.svc, timeout, p.log)
	gate := lookup.NewGate(p.extractor, dispatcher, highlight.Highlighter{Root: doc.Root}, p.log)

	type answer struct {
		resp     *model.LookupResponse
		err      error
		forward  []model.Span
		backward []model.Span
	}
	replies := make(chan answer, 1)

	outcome := gate.Trigger(session, p.cfg.LookupOptions(), target,
		func(resp *model.LookupResponse, err error, forward, backward []model.Span) {
			replies <- answer{resp: resp, err: err, forward: forward, backward: backward}
		})

	if !outcome.Dispatched {
		report.Reset = string(outcome.Reason)
		return report
	}

	prepared := outcome.Prepared
	fill(report, prepared.Anchor, prepared.Forward, prepared.Backward)
	req := prepared.Request
	report.Request = &req

	wait := p.cfg.Lookup.WaitForReply
	if wait <= 0 {
		wait = 30 * time.Second
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case a := <-replies:
		if a.err != nil {
			report.Error = a.err.Error()
			return report
		}
		report.Response = a.resp
		if a.resp != nil && a.resp.MatchLength > 0 {
			marks := highlight.Apply(highlight.Select(a.forward, a.resp.MatchLength))
			// The match starts at the anchor, which now lives in the first mark
			if len(marks) > 0 {
				session.Remember(model.Anchor{Node: marks[0].FirstChild})
			} else {
				session.Remember(prepared.Anchor)
			}
			p.log.Debug().Int("marks", len(marks)).Msg("match highlighted")
		}
	case <-timer.C:
		report.Error = ErrNoReply.Error()
	case <-ctx.Done():
		report.Error = ctx.Err().Error()
	}
	return report
}

// fill copies the printable form of both extractions into report
func fill(report *model.Report, anchor model.Anchor, forward, backward model.Result) {
	report.Anchor = dom.Path(anchor.Node)
	report.Offset = anchor.Offset
	report.Forward = View(forward)
	report.Backward = View(backward)
}

// View replaces span nodes by their document paths
func View(r model.Result) model.Extraction {
	out := model.Extraction{Text: r.Text, Spans: make([]model.SpanView, 0, len(r.Spans))}
	for _, s := range r.Spans {
		units := dom.Text(s.Node)
		start, end := min(s.Start(), len(units)), min(s.End(), len(units))
		out.Spans = append(out.Spans, model.SpanView{
			Path:         dom.Path(s.Node),
			AnchorOffset: s.AnchorOffset,
			FarOffset:    s.FarOffset,
			Text:         dom.String(units[start:end]),
		})
	}
	return out
}

// Preparer binds doc so a worker.BatchExtractor can prepare specs against it
func (p *Pipeline) Preparer(doc *Document) worker.Preparer {
	return worker.PreparerFunc(func(spec model.AnchorSpec) *model.Report {
		return p.Prepare(doc, spec)
	})
}
