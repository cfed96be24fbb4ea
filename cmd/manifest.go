package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/network"
	"github.com/panorama-cli/panorama/stream"
	"github.com/panorama-cli/panorama/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.Flags().BoolP("json", "j", false, "Print the ladder as JSON")
	manifestCmd.Flags().BoolP("select", "s", false, "Pick a variant interactively and print its URL")
	manifestCmd.MarkFlagsMutuallyExclusive("json", "select")
}

var manifestCmd = &cobra.Command{
	Use:   "manifest <url>",
	Short: "List the resolution ladder of an HLS master playlist",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if timeout := viper.GetInt(key.ManifestTimeoutSeconds); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancel()
		}

		ladder, err := manifest.NewReader(args[0], network.NewFetcher()).Read(ctx)
		handleErr(err)

		switch {
		case lo.Must(cmd.Flags().GetBool("json")):
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(ladder))
		case lo.Must(cmd.Flags().GetBool("select")):
			url, err := selectVariant(args[0], ladder)
			handleErr(err)
			cmd.Println(url)
		default:
			cmd.Print(renderLadder(ladder))
		}
	},
}

func selectVariant(root string, ladder stream.Ladder) (string, error) {
	options := append([]string{"Automatic"}, lo.Map(ladder, func(o stream.ResolutionOption, _ int) string {
		return o.String()
	})...)

	prompt := &survey.Select{
		Message: "Resolution",
		Options: options,
	}

	var index int
	if err := survey.AskOne(prompt, &index); err != nil {
		return "", err
	}

	if index == 0 {
		return root, nil
	}
	return ladder[index-1].URL, nil
}

func renderLadder(ladder stream.Ladder) string {
	var (
		labelStyle   = style.New().Bold(true).Foreground(color.Purple).Width(8)
		sizeStyle    = style.New().Width(12)
		bitrateStyle = style.New().Foreground(color.Yellow).Width(10)
	)

	rows := lo.Map(ladder, func(o stream.ResolutionOption, _ int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(o.Label()),
			sizeStyle.Render(fmt.Sprintf("%dx%d", o.Width, o.Height)),
			bitrateStyle.Render(o.BitrateLabel()),
			style.Faint(o.URL),
		) + "\n"
	})

	return lo.Reduce(rows, func(acc, row string, _ int) string { return acc + row }, "")
}
