package cmd

import (
	"encoding/json"
	"os"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/open"
	"github.com/panorama-cli/panorama/style"
	"github.com/panorama-cli/panorama/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget encapsulates a localized filesystem resource and its CLI representation.
type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

// wherePaths registry of all application resources with resolvable filesystem paths.
var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"History", where.History, "history", mo.Some("s"), false},
	{"Meshes", where.Meshes, "meshes", mo.Some("m"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if n.argShort.IsPresent() {
			whereCmd.Flags().BoolP(n.argLong, n.argShort.MustGet(), false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}

	}

	whereCmd.Flags().BoolP("json", "j", false, "Print every path as a JSON object")
	whereCmd.Flags().BoolP("open", "o", false, "Open the selected path (the config directory by default) with the system handler")
	whereCmd.MarkFlagsMutuallyExclusive("json", "open")

	whereCmd.MarkFlagsMutuallyExclusive(append(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	}), "json")...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd displays the filesystem paths panorama reads and writes.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the filesystem paths panorama reads and writes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		selected, found := lo.Find(wherePaths, func(t *whereTarget) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if lo.Must(cmd.Flags().GetBool("open")) {
			if !found {
				selected = wherePaths[0]
			}
			handleErr(open.Start(selected.where()))
			return
		}

		if found {
			cmd.Println(selected.where())
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := lo.SliceToMap(wherePaths, func(t *whereTarget) (string, string) {
				return t.argLong, t.where()
			})
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(paths))
			return
		}

		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(wherePaths, func(t *whereTarget, _ int) bool {
			return t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", headerStyle(n.name+"?"), style.Fg(color.Yellow)("--"+n.argLong))
			cmd.Println(n.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
