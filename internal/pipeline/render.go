package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/hoverlex/internal/model"
	"golang.org/x/net/html"
)

// Renderer writes reports in the configured format
type Renderer struct {
	format  string // "text" or "json"
	verbose bool
}

// NewRenderer creates a renderer; unknown formats fall back to text
func NewRenderer(format string, verbose bool) *Renderer {
	format = strings.ToLower(format)
	if format != "json" {
		format = "text"
	}
	return &Renderer{format: format, verbose: verbose}
}

// Format returns the effective output format
func (r *Renderer) Format() string {
	return r.format
}

// Render writes reports to w. JSON output is a single object for one report
// and an array otherwise.
func (r *Renderer) Render(w io.Writer, reports ...*model.Report) error {
	if r.format == "json" {
		return r.renderJSON(w, reports)
	}
	for i, rep := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := r.renderText(w, rep); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderJSON(w io.Writer, reports []*model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	var v any = reports
	if len(reports) == 1 {
		v = reports[0]
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func (r *Renderer) renderText(w io.Writer, rep *model.Report) error {
	var b strings.Builder

	label := rep.Spec.Name
	if label == "" {
		label = describeSpec(rep.Spec)
	}
	fmt.Fprintf(&b, "%s  %s\n", rep.Source, label)

	if rep.Anchor != "" {
		fmt.Fprintf(&b, "  anchor    %s @ %d\n", rep.Anchor, rep.Offset)
	}
	if rep.Anchor != "" || rep.Reset != "" {
		fmt.Fprintf(&b, "  forward   %q\n", rep.Forward.Text)
		fmt.Fprintf(&b, "  backward  %q\n", rep.Backward.Text)
	}

	if r.verbose {
		writeSpans(&b, "forward", rep.Forward.Spans)
		writeSpans(&b, "backward", rep.Backward.Spans)
	}

	switch {
	case rep.Reset != "":
		fmt.Fprintf(&b, "  reset     %s\n", rep.Reset)
	case rep.Request != nil:
		fmt.Fprintf(&b, "  text      %q\n", rep.Request.Text)
		fmt.Fprintf(&b, "  prefix    %q\n", rep.Request.Prefix)
	}

	if rep.Response != nil {
		fmt.Fprintf(&b, "  match     %d code units", rep.Response.MatchLength)
		if rep.Response.Source != "" {
			fmt.Fprintf(&b, " (%s)", rep.Response.Source)
		}
		b.WriteByte('\n')
		for _, e := range rep.Response.Entries {
			fmt.Fprintf(&b, "    %s", e.Word)
			if e.Reading != "" {
				fmt.Fprintf(&b, " [%s]", e.Reading)
			}
			if len(e.Glosses) > 0 {
				fmt.Fprintf(&b, "  %s", strings.Join(e.Glosses, "; "))
			}
			b.WriteByte('\n')
		}
	}

	if rep.Error != "" {
		fmt.Fprintf(&b, "  error     %s\n", rep.Error)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSpans(b *strings.Builder, label string, spans []model.SpanView) {
	for _, s := range spans {
		fmt.Fprintf(b, "    %-8s %s [%d→%d] %q\n", label, s.Path, s.AnchorOffset, s.FarOffset, s.Text)
	}
}

func describeSpec(spec model.AnchorSpec) string {
	if spec.Path != "" {
		return fmt.Sprintf("%s+%d", spec.Path, spec.Offset)
	}
	return fmt.Sprintf("%q#%d+%d", spec.Match, spec.Nth, spec.Offset)
}

// WriteHTML renders doc to path, or to stdout when path is "-"
func WriteHTML(doc *Document, path string) (err error) {
	if path == "-" {
		return html.Render(os.Stdout, doc.Root)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err := html.Render(f, doc.Root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
