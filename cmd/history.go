package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/history"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Print the entries as JSON")
	historyCmd.Flags().StringP("search", "q", "", "Only list entries whose title or URL fuzzily match")

	historyCmd.AddCommand(historyRemoveCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved playback positions, most recent first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Default().Search(lo.Must(cmd.Flags().GetString("search")))
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		for _, entry := range entries {
			mark := style.Fg(color.Yellow)(fmt.Sprintf("%3.0f%%", entry.Progress()*100))
			if entry.Finished {
				mark = style.Fg(color.Green)("done")
			}

			cmd.Printf("%s %s\n     %s\n", mark, style.Bold(entry.String()), style.Faint(entry.URL))
		}
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <url>",
	Short:   "Forget the saved position of a stream",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		entries, err := history.Default().All()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return lo.Map(entries, func(e history.Entry, _ int) string { return e.ID }), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		if history.Default().Get(args[0]).IsAbsent() {
			handleErr(fmt.Errorf("no history for %s", args[0]))
		}

		handleErr(history.Default().Remove(args[0]))
		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}
