package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/ppiankov/hoverlex/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body><p>これは<b>日本語</b>の本です。</p><p>English only</p><input type="text" value="漢字"></body></html>`

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Lookup.WaitForReply = time.Second
	return cfg
}

func newTestPipeline(t *testing.T, svc service.Service) *Pipeline {
	t.Helper()
	p, err := New(testConfig(), svc, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func loadPage(t *testing.T, p *Pipeline, src string) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := p.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func TestLoad_FileWithMetaCharset(t *testing.T) {
	p := newTestPipeline(t, nil)

	// 日本 in EUC-JP
	src := append([]byte(`<html><head><meta charset="euc-jp"></head><body><p>`), 0xc6, 0xfc, 0xcb, 0xdc)
	src = append(src, []byte(`</p></body></html>`)...)
	doc := loadPage(t, p, string(src))

	if doc.Charset != "euc-jp" {
		t.Errorf("expected euc-jp, got %s", doc.Charset)
	}
	report := p.Prepare(doc, model.AnchorSpec{Match: "日本"})
	if report.Request == nil || report.Request.Text != "日本" {
		t.Errorf("expected decoded text 日本, got %+v", report)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	p := newTestPipeline(t, nil)
	if _, err := p.Load(context.Background(), filepath.Join(t.TempDir(), "nope.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLocate(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	a, err := p.Locate(doc, model.AnchorSpec{Match: "日本", Offset: 1})
	if err != nil {
		t.Fatalf("Locate by match failed: %v", err)
	}
	if a.Node.Data != "日本語" || a.Offset != 1 {
		t.Errorf("unexpected anchor %q @ %d", a.Node.Data, a.Offset)
	}

	b, err := p.Locate(doc, model.AnchorSpec{Path: "/html/body/p[1]/#text[1]", Offset: 2})
	if err != nil {
		t.Fatalf("Locate by path failed: %v", err)
	}
	if b.Node.Data != "これは" || b.Offset != 2 {
		t.Errorf("unexpected anchor %q @ %d", b.Node.Data, b.Offset)
	}

	if _, err := p.Locate(doc, model.AnchorSpec{Match: "中国"}); err == nil {
		t.Error("expected error for missing match")
	}
	if _, err := p.Locate(doc, model.AnchorSpec{}); err == nil {
		t.Error("expected error for empty spec")
	}
}

func TestPrepare(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	report := p.Prepare(doc, model.AnchorSpec{Match: "日本語", Pointer: model.Point{X: 10, Y: 20}})
	if report.Request == nil {
		t.Fatalf("expected a request, got reset %q error %q", report.Reset, report.Error)
	}
	if report.Request.Text != "日本語の本です。" {
		t.Errorf("unexpected text %q", report.Request.Text)
	}
	if report.Request.Prefix != "これは" {
		t.Errorf("unexpected prefix %q", report.Request.Prefix)
	}
	if report.Request.Pointer != (model.Point{X: 10, Y: 20}) {
		t.Errorf("pointer not passed through: %+v", report.Request.Pointer)
	}
	if report.Anchor != "/html[1]/body[1]/p[1]/b[1]/#text[1]" {
		t.Errorf("unexpected anchor path %s", report.Anchor)
	}
	if len(report.Forward.Spans) != 2 || report.Forward.Spans[1].Text != "の本です。" {
		t.Errorf("unexpected forward spans %+v", report.Forward.Spans)
	}
}

func TestPrepare_Resets(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	report := p.Prepare(doc, model.AnchorSpec{Match: "English"})
	if report.Reset != "not-lookup-worthy" {
		t.Errorf("expected not-lookup-worthy, got %q", report.Reset)
	}
	if report.Forward.Text != "English only" {
		t.Errorf("reset reports still show the extraction, got %q", report.Forward.Text)
	}

	report = p.Prepare(doc, model.AnchorSpec{Match: "これは", Offset: 40})
	if report.Reset != "out-of-range" {
		t.Errorf("expected out-of-range, got %q", report.Reset)
	}

	report = p.Prepare(doc, model.AnchorSpec{Match: "missing"})
	if report.Error == "" || report.Dispatched() {
		t.Errorf("expected locate error, got %+v", report)
	}
}

func TestPrepare_Editable(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	report := p.Prepare(doc, model.AnchorSpec{Path: "/html/body/input"})
	if report.Request == nil || report.Request.Text != "漢字" {
		t.Fatalf("expected editable value as text, got %+v", report)
	}
}

func TestLookup_HighlightsMatch(t *testing.T) {
	svc := service.Func(func(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
		return &model.LookupResponse{
			MatchLength: 3,
			Entries:     []model.Entry{{Word: "日本語", Reading: "にほんご", Glosses: []string{"Japanese"}}},
			Source:      "fake",
		}, nil
	})
	p := newTestPipeline(t, svc)
	doc := loadPage(t, p, page)

	report := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "日本語"})
	if report.Error != "" {
		t.Fatalf("unexpected error %s", report.Error)
	}
	if report.Response == nil || report.Response.MatchLength != 3 {
		t.Fatalf("unexpected response %+v", report.Response)
	}

	var b strings.Builder
	if err := html.Render(&b, doc.Root); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `<b><mark class="hoverlex">日本語</mark></b>`) {
		t.Errorf("match not highlighted:\n%s", b.String())
	}
}

func fixedMatch(n int) service.Func {
	return func(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
		return &model.LookupResponse{MatchLength: n, Source: "fake"}, nil
	}
}

func TestLookup_RemembersLastAnchor(t *testing.T) {
	p := newTestPipeline(t, fixedMatch(3))
	doc := loadPage(t, p, page)

	report := p.Lookup(context.Background(), doc, model.AnchorSpec{})
	if report.Reset != "no-anchor" {
		t.Errorf("expected no-anchor before any lookup, got %+v", report)
	}

	first := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "日本語"})
	if first.Error != "" || first.Request == nil {
		t.Fatalf("first lookup failed: %+v", first)
	}
	if doc.Session.LastAnchor == nil {
		t.Fatal("highlighted anchor not remembered")
	}

	again := p.Lookup(context.Background(), doc, model.AnchorSpec{Pointer: model.Point{X: 3, Y: 4}})
	if again.Error != "" || again.Request == nil {
		t.Fatalf("lookup of the remembered anchor failed: %+v", again)
	}
	if again.Request.Text != first.Request.Text || again.Request.Prefix != first.Request.Prefix {
		t.Errorf("remembered lookup sent %+v, first sent %+v", again.Request, first.Request)
	}
	if again.Request.Pointer != (model.Point{X: 3, Y: 4}) {
		t.Errorf("pointer not passed through: %+v", again.Request.Pointer)
	}
}

func TestLookup_ResetReportTakenBeforeClear(t *testing.T) {
	p := newTestPipeline(t, fixedMatch(3))
	doc := loadPage(t, p, `<html><body><p><b>日本語abc</b></p></body></html>`)

	if r := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "日本語"}); r.Request == nil {
		t.Fatalf("first lookup not dispatched: %+v", r)
	}

	// "abc" sits next to the mark; the reset merges it back into one text node
	report := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "abc"})
	if report.Reset != "not-lookup-worthy" {
		t.Fatalf("expected reset, got %+v", report)
	}
	if report.Anchor != "/html[1]/body[1]/p[1]/b[1]/#text[1]" {
		t.Errorf("anchor path taken from a detached node: %q", report.Anchor)
	}
	if report.Forward.Text != "abc" || report.Backward.Text != "日本語" {
		t.Errorf("unexpected extractions forward=%q backward=%q", report.Forward.Text, report.Backward.Text)
	}

	var b strings.Builder
	if err := html.Render(&b, doc.Root); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "<b>日本語abc</b>") {
		t.Errorf("marks not cleared on reset:\n%s", b.String())
	}
}

func TestLookup_ResetSkipsService(t *testing.T) {
	called := false
	svc := service.Func(func(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
		called = true
		return &model.LookupResponse{}, nil
	})
	p := newTestPipeline(t, svc)
	doc := loadPage(t, p, page)

	report := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "English"})
	if report.Reset != "not-lookup-worthy" {
		t.Errorf("expected reset, got %+v", report)
	}
	if called {
		t.Error("service must not be called on reset")
	}
}

func TestLookup_NoReply(t *testing.T) {
	svc := service.Func(func(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	cfg := testConfig()
	cfg.Lookup.Timeout = time.Second
	cfg.Lookup.WaitForReply = 20 * time.Millisecond
	p, err := New(cfg, svc, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	doc := loadPage(t, p, page)

	report := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "日本語"})
	if report.Error != ErrNoReply.Error() {
		t.Errorf("expected %q, got %q", ErrNoReply, report.Error)
	}
	if !report.Dispatched() {
		t.Error("request should still be reported")
	}
}

func TestLookup_Disabled(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	report := p.Lookup(context.Background(), doc, model.AnchorSpec{Match: "日本語"})
	if report.Error != service.ErrDisabled.Error() {
		t.Errorf("expected disabled error, got %q", report.Error)
	}
}

func TestRenderer(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)
	reports := []*model.Report{
		p.Prepare(doc, model.AnchorSpec{Name: "jp", Match: "日本語"}),
		p.Prepare(doc, model.AnchorSpec{Match: "English"}),
	}

	var text bytes.Buffer
	if err := NewRenderer("text", true).Render(&text, reports...); err != nil {
		t.Fatal(err)
	}
	out := text.String()
	for _, want := range []string{"jp", `text      "日本語の本です。"`, "reset     not-lookup-worthy", "/html[1]/body[1]/p[1]/b[1]/#text[1]"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	var single bytes.Buffer
	if err := NewRenderer("JSON", false).Render(&single, reports[0]); err != nil {
		t.Fatal(err)
	}
	var decoded model.Report
	if err := json.Unmarshal(single.Bytes(), &decoded); err != nil {
		t.Fatalf("single report is not a JSON object: %v", err)
	}
	if decoded.Request == nil || decoded.Request.Prefix != "これは" {
		t.Errorf("unexpected decoded report %+v", decoded)
	}

	var many bytes.Buffer
	if err := NewRenderer("json", false).Render(&many, reports...); err != nil {
		t.Fatal(err)
	}
	var list []model.Report
	if err := json.Unmarshal(many.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("expected JSON array of 2, got %v (%v)", len(list), err)
	}

	if NewRenderer("yaml", false).Format() != "text" {
		t.Error("unknown formats fall back to text")
	}
}

func TestWriteHTML(t *testing.T) {
	p := newTestPipeline(t, nil)
	doc := loadPage(t, p, page)

	out := filepath.Join(t.TempDir(), "out.html")
	if err := WriteHTML(doc, out); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "これは<b>日本語</b>") {
		t.Errorf("unexpected html: %s", data)
	}
}
