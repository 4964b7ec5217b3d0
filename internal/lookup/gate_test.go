package lookup

import (
	"errors"
	"testing"

	dt "github.com/ppiankov/hoverlex/internal/dom/domtest"
	"github.com/ppiankov/hoverlex/internal/extract"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/ppiankov/hoverlex/internal/style"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// syncDispatcher answers immediately with a canned response
type syncDispatcher struct {
	requests []model.LookupRequest
	resp     *model.LookupResponse
	err      error
}

func (d *syncDispatcher) Dispatch(req model.LookupRequest, done func(*model.LookupResponse, error)) {
	d.requests = append(d.requests, req)
	done(d.resp, d.err)
}

type fixture struct {
	gate    *Gate
	disp    *syncDispatcher
	resets  int
	session *Session
}

func newFixture(children ...*html.Node) *fixture {
	f := &fixture{disp: &syncDispatcher{resp: &model.LookupResponse{MatchLength: 2}}}
	doc := dt.Doc(dt.El("html", dt.El("body", dt.El("p", children...))))
	f.session = &Session{Document: doc, Pointer: model.Point{X: 10, Y: 20}}
	f.gate = NewGate(
		extract.New(style.NewDefaultResolver()),
		f.disp,
		ResetFunc(func() { f.resets++ }),
		zerolog.Nop(),
	)
	return f
}

func TestGate_CodePointGate(t *testing.T) {
	latin := dt.Text("abc")
	kana := dt.Text("あいう")
	f := newFixture(latin, dt.El("br"), kana)

	out := f.gate.Trigger(f.session, model.Options{}, &model.Anchor{Node: latin}, nil)
	if out.Dispatched || out.Reason != ResetNotLookupWorthy {
		t.Errorf("expected not-lookup-worthy reset, got %+v", out)
	}
	if f.resets != 1 {
		t.Errorf("expected one reset, got %d", f.resets)
	}

	out = f.gate.Trigger(f.session, model.Options{}, &model.Anchor{Node: kana}, nil)
	if !out.Dispatched {
		t.Fatalf("expected dispatch, got reset %q", out.Reason)
	}
	if len(f.disp.requests) != 1 || f.disp.requests[0].Text != "あいう" {
		t.Errorf("unexpected requests %+v", f.disp.requests)
	}
}

func TestGate_PrefixGuard(t *testing.T) {
	anchor := dt.Text("漢字")
	f := newFixture(dt.Text("  hello"), anchor)

	p, reason := f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: anchor})
	if reason != ResetNone {
		t.Fatalf("unexpected reset %q", reason)
	}
	if p.Backward.Text != "  hello" {
		t.Errorf("expected untrimmed backward text, got %q", p.Backward.Text)
	}
	if p.Request.Prefix != "hello" {
		t.Errorf("expected prefix hello, got %q", p.Request.Prefix)
	}

	anchor = dt.Text("漢字")
	f = newFixture(dt.Text("hello  "), anchor)
	p, _ = f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: anchor})
	if p.Request.Prefix != "" {
		t.Errorf("trailing whitespace before the anchor should drop the prefix, got %q", p.Request.Prefix)
	}
}

func TestGate_PrefixAcrossInlineElement(t *testing.T) {
	// <p><b>日本</b>語</p>
	anchor := dt.Text("語")
	f := newFixture(dt.El("b", dt.Text("日本")), anchor)

	p, reason := f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: anchor})
	if reason != ResetNone {
		t.Fatalf("unexpected reset %q", reason)
	}
	if p.Request.Text != "語" {
		t.Errorf("expected text 語, got %q", p.Request.Text)
	}
	if p.Request.Prefix != "日本" {
		t.Errorf("expected prefix 日本, got %q", p.Request.Prefix)
	}
	if len(p.Backward.Spans) != 2 || p.Backward.Spans[0].Node.Data != "日本" {
		t.Errorf("expected the <b> text first in backward spans, got %+v", p.Backward.Spans)
	}
}

func TestGate_WhitespaceSkip(t *testing.T) {
	ideographic := dt.Text("　漢字")
	onlySpace := dt.Text(" ")
	doubleSpace := dt.Text("  漢")
	f := newFixture(ideographic, dt.El("div", onlySpace), dt.El("div", doubleSpace))

	p, reason := f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: ideographic})
	if reason != ResetNone {
		t.Fatalf("unexpected reset %q", reason)
	}
	if p.Anchor.Offset != 1 || p.Request.Text != "漢字" {
		t.Errorf("expected anchor advanced to 1, got %d / %q", p.Anchor.Offset, p.Request.Text)
	}

	if _, reason := f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: onlySpace}); reason != ResetOutOfRange {
		t.Errorf("expected out-of-range, got %q", reason)
	}

	// only one unit is skipped
	if _, reason := f.gate.Prepare(f.session, model.Options{}, &model.Anchor{Node: doubleSpace}); reason != ResetNotLookupWorthy {
		t.Errorf("expected not-lookup-worthy, got %q", reason)
	}
}

func TestGate_Resets(t *testing.T) {
	reading := dt.Text("かん")
	kanji := dt.Text("漢")
	f := newFixture(dt.El("ruby", kanji, dt.El("rt", reading)))

	tests := []struct {
		name    string
		session *Session
		anchor  *model.Anchor
		want    ResetReason
	}{
		{"no anchor", f.session, nil, ResetNoAnchor},
		{"detached", f.session, &model.Anchor{Node: dt.Text("漢字")}, ResetDetached},
		{"no document", &Session{}, &model.Anchor{Node: kanji}, ResetDetached},
		{"offset past end", f.session, &model.Anchor{Node: kanji, Offset: 1}, ResetOutOfRange},
		{"negative offset", f.session, &model.Anchor{Node: kanji, Offset: -1}, ResetOutOfRange},
		{"annotation text", f.session, &model.Anchor{Node: reading}, ResetEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.resets
			out := f.gate.Trigger(tt.session, model.Options{}, tt.anchor, nil)
			if out.Dispatched || out.Reason != tt.want {
				t.Errorf("got %+v, want reset %q", out, tt.want)
			}
			if f.resets != before+1 {
				t.Error("resetter not called")
			}
		})
	}

	if len(f.disp.requests) != 0 {
		t.Errorf("nothing should have been dispatched, got %d", len(f.disp.requests))
	}
}

func TestGate_LastAnchorFallback(t *testing.T) {
	kanji := dt.Text("漢字")
	f := newFixture(kanji)
	f.session.Remember(model.Anchor{Node: kanji, Offset: 1})

	out := f.gate.Trigger(f.session, model.Options{Dictionary: 2}, nil, nil)
	if !out.Dispatched {
		t.Fatalf("expected dispatch from remembered anchor, got %q", out.Reason)
	}
	req := f.disp.requests[0]
	if req.Text != "字" || req.Prefix != "漢" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Options.Dictionary != 2 || req.Pointer != (model.Point{X: 10, Y: 20}) {
		t.Errorf("options or pointer not passed through: %+v", req)
	}

	f.session.Forget()
	if out := f.gate.Trigger(f.session, model.Options{}, nil, nil); out.Reason != ResetNoAnchor {
		t.Errorf("expected no-anchor after Forget, got %+v", out)
	}
}

func TestGate_ReplyCarriesSpans(t *testing.T) {
	before := dt.Text("東京")
	anchor := dt.Text("都庁")
	f := newFixture(before, dt.El("b", anchor))
	f.disp.err = errors.New("offline")

	var gotErr error
	var fwd, bwd []model.Span
	out := f.gate.Trigger(f.session, model.Options{}, &model.Anchor{Node: anchor}, func(resp *model.LookupResponse, err error, forward, backward []model.Span) {
		gotErr, fwd, bwd = err, forward, backward
	})
	if !out.Dispatched {
		t.Fatalf("expected dispatch, got %q", out.Reason)
	}
	if gotErr == nil || gotErr.Error() != "offline" {
		t.Errorf("expected service error to reach reply, got %v", gotErr)
	}
	if len(fwd) != 1 || fwd[0].Node != anchor {
		t.Errorf("unexpected forward spans %+v", fwd)
	}
	if len(bwd) != 2 || bwd[0].Node != before || bwd[1].Node != anchor {
		t.Errorf("unexpected backward spans %+v", bwd)
	}
}

func TestGate_NilDispatcher(t *testing.T) {
	kanji := dt.Text("漢字")
	doc := dt.Doc(dt.El("p", kanji))
	g := NewGate(extract.New(nil), nil, nil, zerolog.Nop())

	out := g.Trigger(&Session{Document: doc}, model.Options{}, &model.Anchor{Node: kanji}, nil)
	if !out.Dispatched || out.Prepared.Request.Text != "漢字" {
		t.Errorf("unexpected outcome %+v", out)
	}
	out = g.Trigger(&Session{Document: doc}, model.Options{}, nil, nil)
	if out.Reason != ResetNoAnchor {
		t.Errorf("expected reset without resetter to be safe, got %+v", out)
	}
}

func TestIsLookupWorthy(t *testing.T) {
	tests := []struct {
		r    rune
		want bool
	}{
		{'a', false},
		{0x3000, false}, // ideographic space
		{0x3001, true},
		{0x3042, true}, // あ
		{0x30FF, true},
		{0x3100, false},
		{0x3400, true},
		{0x9FFF, true},
		{0xA000, false},
		{0xF900, true},
		{0xFAFF, true},
		{0xFF10, true},
		{0xFF9D, true},
		{0xFF9E, false},
		{0x25CB, true},
		{0x25CC, false},
		{0x1FFFF, false},
		{0x20000, true},
		{0x2A6DF, true},
	}

	for _, tt := range tests {
		if got := IsLookupWorthy(tt.r); got != tt.want {
			t.Errorf("IsLookupWorthy(%U) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
