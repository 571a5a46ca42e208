// Command bridgeworker runs the reflective bridge worker over its own
// standard input and standard output: a long-running process the driver
// launches and communicates with over two framed byte streams.
package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/gvm-project/reflectbridge/internal/bridge"
	"github.com/gvm-project/reflectbridge/internal/log"
	"github.com/gvm-project/reflectbridge/internal/registry"
)

func main() {
	debug := pflag.BoolP("debug", "d", false, "echo incoming command names to standard error")
	pflag.Parse()

	logger := log.New(*debug)

	reg := registry.New()
	registry.RegisterBuiltins(reg)

	d := bridge.New(os.Stdin, os.Stdout, reg, logger, *debug)
	if err := d.Run(); err != nil {
		logger.Error().Err(err).Msg("worker terminated")
		os.Exit(1)
	}
}
