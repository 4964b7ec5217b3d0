package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/hoverlex/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var extractAnchor anchorFlags

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|url|->",
	Short: "Show the text a lookup would be built from",
	Long: `Extract locates an anchor, runs the lookup gate without calling any
service and prints the forward text, the backward prefix and the span of
every text node that contributed.

Example:
  hoverlex extract page.html --match 日本語
  hoverlex extract https://www3.nhk.or.jp/news/ --match 天気 --offset 1 -v
  hoverlex extract page.html --path /html/body/p[2]/#text --offset 4 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractAnchor.register(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	spec, err := extractAnchor.spec()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, nil, log.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.Timeout)
	defer cancel()

	doc, err := p.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	report := p.Prepare(doc, spec)
	return pipeline.NewRenderer(cfg.Output.Format, cfg.Output.Verbose).Render(cmd.OutOrStdout(), report)
}
