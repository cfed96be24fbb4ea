package version

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/network"
	"github.com/panorama-cli/panorama/style"
	"github.com/panorama-cli/panorama/util"
	"github.com/spf13/viper"
)

// Notify prints a notice to w when a newer release exists. Failures are silent.
func Notify(w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	latest, err := Latest(ctx, network.NewFetcher())
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Fprintf(w, `
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/panorama-cli/panorama/releases/tag/v"+latest),
	)
}
