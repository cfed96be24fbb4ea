// Package main is the entry point for panorama.
package main

import (
	"github.com/panorama-cli/panorama/cmd"
	"github.com/panorama-cli/panorama/config"
	"github.com/panorama-cli/panorama/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
