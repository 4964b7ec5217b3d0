package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/hoverlex/internal/pipeline"
	"github.com/ppiankov/hoverlex/internal/worker"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <anchors.yaml> [file|url]",
	Short: "Prepare many anchors in one document in parallel",
	Long: `Batch reads a YAML list of anchors and prepares each of them against one
document, concurrently. The document is parsed once and shared read-only.
No lookup service is called.

anchors.yaml:
  source: page.html        # used when no document argument is given
  anchors:
    - name: headline
      match: 日本語
    - path: /html/body/p[2]/#text
      offset: 4

Example:
  hoverlex batch anchors.yaml
  hoverlex batch anchors.yaml https://example.jp/article --concurrency 8 --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of workers (default: concurrency.workers from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 2*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file, err := worker.ReadAnchorSpecs(args[0])
	if err != nil {
		return err
	}

	source := file.Source
	if len(args) == 2 {
		source = args[1]
	}
	if source == "" {
		return errors.New("no document: pass one or set source in the anchors file")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	p, err := pipeline.New(cfg, nil, log.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	doc, err := p.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	start := time.Now()
	reports := worker.NewBatchExtractor(p.Preparer(doc), workers).Process(ctx, file.Anchors)

	accepted := 0
	for _, r := range reports {
		if r.Dispatched() {
			accepted++
		}
	}
	log.Info().
		Int("anchors", len(reports)).
		Int("accepted", accepted).
		Int("workers", workers).
		Dur("took", time.Since(start)).
		Msg("batch complete")

	return pipeline.NewRenderer(cfg.Output.Format, cfg.Output.Verbose).Render(cmd.OutOrStdout(), reports...)
}
