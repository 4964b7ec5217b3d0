package main

import (
	"os"

	"github.com/ppiankov/hoverlex/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("hoverlex failed")
		os.Exit(1)
	}
}
