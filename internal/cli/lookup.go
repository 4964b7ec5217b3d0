package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/hoverlex/internal/pipeline"
	"github.com/ppiankov/hoverlex/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	lookupAnchor anchorFlags
	htmlOut      string
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <file|url|->",
	Short: "Look up the word at an anchor and highlight the match",
	Long: `Lookup runs the full flow: the anchor gate validates the anchor, the request
goes to the configured lookup service, and the matched characters are
highlighted through the recorded spans.

Example:
  hoverlex lookup page.html --match 日本語 --provider http --endpoint http://localhost:8080/lookup
  OPENAI_API_KEY=sk-... hoverlex lookup page.html --match 日本語 --provider openai
  hoverlex lookup page.html --match 日本語 --provider ollama --model qwen2.5:7b --html marked.html`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupAnchor.register(lookupCmd)
	lookupCmd.Flags().StringVar(&htmlOut, "html", "", "write the highlighted document to this path (- for stdout)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	spec, err := lookupAnchor.spec()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, log.Logger)
	if errors.Is(err, service.ErrDisabled) {
		return errors.New("no lookup provider configured (use --provider or lookup.provider in the config file)")
	}
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, svc, log.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.Timeout+cfg.Lookup.WaitForReply)
	defer cancel()

	doc, err := p.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	report := p.Lookup(ctx, doc, spec)
	if err := pipeline.NewRenderer(cfg.Output.Format, cfg.Output.Verbose).Render(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if htmlOut != "" {
		if err := pipeline.WriteHTML(doc, htmlOut); err != nil {
			return err
		}
		log.Info().Str("path", htmlOut).Msg("wrote highlighted document")
	}
	return nil
}
