package cmd

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"text/template"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/style"
	"github.com/panorama-cli/panorama/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
}

// revision reads the VCS revision stamped into the binary by the Go toolchain.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return "unknown"
}

var versionTemplate = lo.Must(template.New("version").Funcs(map[string]any{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Go" }}              {{ bold .Go }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
`))

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build metadata",
	Long:  "Display the current application version, build revision, Go version and platform.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify(cmd.OutOrStdout())

		info := struct {
			App, Version, Revision, Go, OS, Arch string
		}{
			App:      constant.Panorama,
			Version:  constant.Version,
			Revision: revision(),
			Go:       strings.TrimPrefix(runtime.Version(), "go"),
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
