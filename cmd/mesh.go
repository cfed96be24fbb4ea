package cmd

import (
	"fmt"
	"os"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(meshCmd)

	meshCmd.Flags().StringP("projection", "p", string(projection.Rectilinear), "Projection: rectilinear, spherical or fisheye")
	lo.Must0(meshCmd.RegisterFlagCompletionFunc("projection", completionProjections))
	meshCmd.Flags().Float64("fov", 180, "Horizontal field of view in degrees")
	meshCmd.Flags().Float64("aspect", 16.0/9.0, "Aspect ratio (width / height), used when --width or --height is missing")
	meshCmd.Flags().Int("width", 0, "Frame width in pixels")
	meshCmd.Flags().Int("height", 0, "Frame height in pixels")
	meshCmd.Flags().Float64("camera-distance", 0, "Camera distance for flat videos (defaults to the configured value)")
	meshCmd.Flags().StringP("output", "o", "", "Write the geometry to this file instead of stdout")
	meshCmd.Flags().Bool("summary", false, "Print vertex and triangle counts instead of the geometry")
}

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Build the projection geometry for a video and print it as JSON",
	Example: `  panorama mesh --projection spherical --fov 360 --aspect 2
  panorama mesh --width 1920 --height 1080 --fov 90 -o plane.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		kind, err := projection.ParseKind(lo.Must(flags.GetString("projection")))
		handleErr(err)

		horizontal := projection.ClampHorizontalFOV(lo.Must(flags.GetFloat64("fov")))
		aspect := lo.Must(flags.GetFloat64("aspect"))
		width, height := lo.Must(flags.GetInt("width")), lo.Must(flags.GetInt("height"))
		if width > 0 && height > 0 {
			aspect = float64(width) / float64(height)
		}

		distance := viper.GetFloat64(key.ScreenCameraDistance)
		if flags.Changed("camera-distance") {
			distance = lo.Must(flags.GetFloat64("camera-distance"))
		}

		geometry, err := projection.Build(projection.Params{
			Kind:           kind,
			HorizontalFOV:  horizontal,
			VerticalFOV:    projection.VerticalFOV(horizontal, aspect),
			Width:          width,
			Height:         height,
			AspectRatio:    aspect,
			CameraDistance: distance,
			PlaneOffset:    viper.GetFloat64(key.ScreenPlaneOffset),
			Radius:         viper.GetFloat64(key.ScreenSphereRadius),
		})
		handleErr(err)

		if lo.Must(flags.GetBool("summary")) {
			cmd.Printf("%s %s: %d vertices, %d triangles\n",
				style.Fg(color.Purple)(geometry.Mesh.Name),
				geometry.Kind,
				geometry.Mesh.VertexCount(),
				geometry.Mesh.TriangleCount(),
			)
			return
		}

		output := lo.Must(flags.GetString("output"))
		if output == "" {
			handleErr(projection.Encode(os.Stdout, geometry))
			return
		}

		file, err := filesystem.API().Create(output)
		handleErr(err)
		defer file.Close()

		handleErr(projection.Encode(file, geometry))
		fmt.Printf("%s wrote %s geometry to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), geometry.Kind, output)
	},
}
