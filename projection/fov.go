package projection

import (
	"math"

	"github.com/panorama-cli/panorama/util"
)

const (
	// MaxHorizontalFOV is a full turn.
	MaxHorizontalFOV = 360.0
	// MaxVerticalFOV is pole to pole.
	MaxVerticalFOV = 180.0

	// degreesPerSlice is the angular resolution of the sphere lattice.
	degreesPerSlice = 3.0

	// rectilinearFOV is the apparent field a flat video subtends at the camera distance.
	rectilinearFOV = 90.0
)

// ClampHorizontalFOV restricts a horizontal field of view to [0, 360] degrees.
func ClampHorizontalFOV(h float64) float64 {
	return util.Clamp(h, 0, MaxHorizontalFOV)
}

// VerticalFOV derives the vertical field of view from a horizontal one and the frame aspect
// ratio (width / height), clamped to [0, 180] degrees.
func VerticalFOV(h, aspect float64) float64 {
	if aspect <= 0 || math.IsNaN(aspect) {
		aspect = 1
	}
	return util.Clamp(ClampHorizontalFOV(h)/aspect, 0, MaxVerticalFOV)
}

// Slices returns the lattice subdivision for a sphere patch covering h by v degrees:
// vertical slices split the azimuth, horizontal slices split the polar range.
func Slices(h, v float64) (vertical, horizontal int) {
	vertical = util.Max(3, int(math.Round(h/degreesPerSlice)))
	horizontal = util.Max(2, int(math.Round(v/degreesPerSlice)))
	return
}

// ScaleFactor returns the width a plane at distance must have to subtend fovDegrees.
func ScaleFactor(distance, fovDegrees float64) float64 {
	return 2 * distance * math.Tan(fovDegrees*math.Pi/180/2)
}
