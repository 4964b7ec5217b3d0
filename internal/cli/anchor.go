package cli

import (
	"errors"

	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/spf13/cobra"
)

// anchorFlags are the flags that address a single anchor
type anchorFlags struct {
	match  string
	nth    int
	path   string
	offset int
	x, y   int
}

func (f *anchorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.match, "match", "", "anchor at an occurrence of this text")
	cmd.Flags().IntVar(&f.nth, "nth", 0, "0-based occurrence of --match")
	cmd.Flags().StringVar(&f.path, "path", "", "anchor in the node at this path, e.g. /html/body/p[2]/#text")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "UTF-16 code units after the match start or node start")
	cmd.Flags().IntVar(&f.x, "x", 0, "pointer x passed to the lookup service")
	cmd.Flags().IntVar(&f.y, "y", 0, "pointer y passed to the lookup service")
}

func (f *anchorFlags) spec() (model.AnchorSpec, error) {
	if (f.match == "") == (f.path == "") {
		return model.AnchorSpec{}, errors.New("give exactly one of --match or --path")
	}
	return model.AnchorSpec{
		Match:   f.match,
		Nth:     f.nth,
		Path:    f.path,
		Offset:  f.offset,
		Pointer: model.Point{X: f.x, Y: f.y},
	}, nil
}
