package projection

import (
	"fmt"
	"math"

	"github.com/panorama-cli/panorama/util"
)

// Params is everything the builder needs to know about the displayed video.
type Params struct {
	Kind Kind
	// HorizontalFOV and VerticalFOV are in degrees.
	HorizontalFOV float64
	VerticalFOV   float64
	// Width and Height are the frame size in pixels; zero when unknown.
	Width, Height int
	// AspectRatio (width / height) shapes a flat video when the frame size is unknown.
	AspectRatio float64
	// CameraDistance and PlaneOffset position flat videos.
	CameraDistance float64
	PlaneOffset    float64
	// Radius of the sphere for spherical kinds.
	Radius float64
}

// Build returns the geometry for p.
func Build(p Params) (Geometry, error) {
	switch p.Kind {
	case Rectilinear, "":
		return buildRectilinear(p)
	case Spherical, Fisheye:
		return buildSpherical(p)
	default:
		return Geometry{}, fmt.Errorf("unknown projection %q", p.Kind)
	}
}

func buildRectilinear(p Params) (Geometry, error) {
	if p.CameraDistance <= 0 || math.IsNaN(p.CameraDistance) {
		return Geometry{}, fmt.Errorf("camera distance must be positive, got %v", p.CameraDistance)
	}

	const width = 1.0
	depth := width
	switch {
	case p.Width > 0 && p.Height > 0:
		depth = float64(p.Height) / float64(p.Width) * width
	case p.AspectRatio > 0 && !math.IsInf(p.AspectRatio, 0):
		depth = width / p.AspectRatio
	}

	scale := float32(ScaleFactor(p.CameraDistance, rectilinearFOV))

	return Geometry{
		Kind: Rectilinear,
		Mesh: Plane(width, depth),
		Transform: Transform{
			Scale:       Vec3{scale, 1, scale},
			Rotation:    AxisAngle(axisX, math.Pi/2),
			Translation: Vec3{0, 0, float32(-p.CameraDistance - p.PlaneOffset)},
		},
	}, nil
}

func buildSpherical(p Params) (Geometry, error) {
	h := util.Clamp(p.HorizontalFOV, 1, MaxHorizontalFOV)
	v := util.Clamp(p.VerticalFOV, 1, MaxVerticalFOV)
	vertical, horizontal := Slices(h, v)

	mesh, err := Sphere(SphereParams{
		Radius:              p.Radius,
		SourceHorizontalFOV: h,
		SourceVerticalFOV:   v,
		ClipHorizontalFOV:   h,
		ClipVerticalFOV:     v,
		VerticalSlices:      vertical,
		HorizontalSlices:    horizontal,
	})
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{
		Kind: p.Kind,
		Mesh: mesh,
		Transform: Transform{
			Scale:    Vec3{1, 1, 1},
			Rotation: AxisAngle(axisY, -math.Pi/2),
		},
	}, nil
}
