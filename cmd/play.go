package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/panorama-cli/panorama/history"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/log"
	"github.com/panorama-cli/panorama/panel"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/player"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(playCmd)
	addPlayFlags(playCmd)

	lo.Must0(playCmd.RegisterFlagCompletionFunc("projection", completionProjections))
	lo.Must0(viper.BindPFlag(key.ScreenFallbackFOV, playCmd.Flags().Lookup("fallback-fov")))
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("title", "t", "", "Title shown in the control panel")
	cmd.Flags().StringP("details", "d", "", "Secondary line shown under the title")
	cmd.Flags().BoolP("continue", "c", false, "Resume from history; without a URL, resume the most recent stream")
	cmd.Flags().StringP("match", "m", "", "With --continue and no URL, resume the best history match instead of the most recent")

	cmd.Flags().Float64("fov", 0, "Horizontal field of view declared by the video, in degrees")
	cmd.Flags().Float64("fallback-fov", 0, "Field of view used when nothing else declares one")
	cmd.Flags().Float64("force-fov", 0, "Field of view that overrides every other source")
	cmd.Flags().StringP("projection", "p", "", "Projection of the video: rectilinear, spherical or fisheye")
	cmd.Flags().Float64("camera-distance", 0, "Camera distance for flat videos")

	cmd.Flags().StringP("mesh-out", "o", "", "Write the current projection geometry to this file as JSON")
	cmd.Flags().Bool("headless", false, "Print playback status lines instead of the control panel")
}

func completionProjections(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(projection.Kinds(), func(k projection.Kind, _ int) string {
		return string(k)
	}), cobra.ShellCompDirectiveNoFileComp
}

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a local file or a remote stream",
	Long: `Play a local file or a remote stream.

Remote HLS playlists offer a resolution selector. Without a declared field of view
the video is probed with ffprobe, and the fallback applies when that fails too.`,
	Example: `  panorama play https://example.com/lake/master.m3u8 --projection spherical
  panorama play ./flat.mp4 --force-fov 90
  panorama play --continue`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			resume   = lo.Must(cmd.Flags().GetBool("continue"))
			headless = lo.Must(cmd.Flags().GetBool("headless"))
		)

		descriptor, entry, err := resolveDescriptor(cmd, args, resume)
		handleErr(err)

		metadata, err := metadataFromFlags(cmd)
		handleErr(err)

		handleErr(checkDependency("mpv", viper.GetString(key.Player)))

		handleErr(play(cmd, descriptor, metadata, entry, headless || !term.IsTerminal(int(os.Stdout.Fd()))))
	},
}

// resolveDescriptor builds the stream to play and finds its history entry when resuming.
func resolveDescriptor(cmd *cobra.Command, args []string, resume bool) (stream.Descriptor, mo.Option[history.Entry], error) {
	none := mo.None[history.Entry]()

	var descriptor stream.Descriptor
	switch {
	case len(args) == 1:
		descriptor = stream.NewDescriptor("", args[0])
	case resume:
		entries, err := history.Default().Search(lo.Must(cmd.Flags().GetString("match")))
		if err != nil {
			return descriptor, none, err
		}
		if len(entries) == 0 {
			return descriptor, none, errors.New("nothing in history to continue")
		}
		descriptor = stream.NewDescriptor(entries[0].Title, entries[0].URL)
	default:
		return descriptor, none, errors.New("a URL is required unless --continue is set")
	}

	if title := lo.Must(cmd.Flags().GetString("title")); title != "" {
		descriptor.Title = title
	}
	descriptor.Details = lo.Must(cmd.Flags().GetString("details"))
	descriptor.FallbackFieldOfView = viper.GetFloat64(key.ScreenFallbackFOV)

	if cmd.Flags().Changed("force-fov") {
		descriptor.ForcedFieldOfView = mo.Some(lo.Must(cmd.Flags().GetFloat64("force-fov")))
	}

	if !resume {
		return descriptor, none, nil
	}

	entry := history.Default().Get(descriptor.ID())
	if e, ok := entry.Get(); ok && descriptor.Title == "" {
		descriptor.Title = e.Title
	}
	return descriptor, entry, nil
}

// metadataFromFlags returns metadata only when the user declared any of it.
func metadataFromFlags(cmd *cobra.Command) (mo.Option[stream.Metadata], error) {
	flags := cmd.Flags()
	if !flags.Changed("fov") && !flags.Changed("projection") && !flags.Changed("camera-distance") {
		return mo.None[stream.Metadata](), nil
	}

	metadata := stream.DefaultMetadata()
	metadata.CameraDistance = viper.GetFloat64(key.ScreenCameraDistance)

	if flags.Changed("fov") {
		metadata.FieldOfView = mo.Some(lo.Must(flags.GetFloat64("fov")))
	}

	if flags.Changed("projection") {
		kind, err := projection.ParseKind(lo.Must(flags.GetString("projection")))
		if err != nil {
			return mo.None[stream.Metadata](), err
		}
		metadata.Projection = kind
	}

	if flags.Changed("camera-distance") {
		metadata.CameraDistance = lo.Must(flags.GetFloat64("camera-distance"))
	}

	return mo.Some(metadata.WithDefaults()), nil
}

func play(cmd *cobra.Command, d stream.Descriptor, metadata mo.Option[stream.Metadata], entry mo.Option[history.Entry], headless bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := player.NewMPV(player.OptionsFromConfig())
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warnf("close engine: %v", err)
		}
	}()

	opts := playback.OptionsFromConfig()
	opts.Renderer = meshRenderer{path: lo.Must(cmd.Flags().GetString("mesh-out"))}

	controller := playback.New(engine, opts)
	defer func() { _ = controller.Close() }()

	if err := controller.OpenStream(ctx, d, metadata); err != nil {
		return err
	}

	if e, ok := entry.Get(); ok && e.Resumable() {
		log.Infof("resuming %s at %.1fs", d, e.Position)
		if err := controller.ResumeAt(e.Position); err != nil {
			return err
		}
	}

	var err error
	if headless {
		reportHeadless(ctx, cmd.OutOrStdout(), controller.Updates())
	} else {
		err = panel.Run(controller, panel.OptionsFromConfig())
	}

	saveHistory(d, controller.State())
	return err
}

func saveHistory(d stream.Descriptor, s playback.State) {
	if !viper.GetBool(key.HistorySave) || !s.IsLoaded() {
		return
	}

	entry := history.NewEntry(d, s.CurrentTime, s.Duration)
	entry.Title = s.Title
	entry.Finished = s.HasReachedEnd
	entry.HorizontalFOV = s.HorizontalFOV
	entry.Projection = s.Projection

	if err := history.Default().Save(entry); err != nil {
		log.Warnf("save history: %v", err)
	}
}

var _ panel.Controls = (*playback.Controller)(nil)
