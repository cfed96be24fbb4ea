package projection

import (
	"errors"
	"fmt"
	"math"
)

// SphereParams describes a sphere patch.
//
// Source angles are the field of view encoded in the video; clip angles are the
// portion actually displayed. When they differ the UVs sample the centered
// sub-region of the frame that matches the clip.
type SphereParams struct {
	Radius              float64
	SourceHorizontalFOV float64
	SourceVerticalFOV   float64
	ClipHorizontalFOV   float64
	ClipVerticalFOV     float64
	VerticalSlices      int
	HorizontalSlices    int
}

// Sphere generates an inward-facing sphere patch on a (VerticalSlices+1)×(HorizontalSlices+1)
// vertex lattice. Row y runs from the top of the patch down, column x sweeps the azimuth.
func Sphere(p SphereParams) (Mesh, error) {
	switch {
	case p.Radius <= 0 || math.IsNaN(p.Radius):
		return Mesh{}, fmt.Errorf("sphere radius must be positive, got %v", p.Radius)
	case p.VerticalSlices < 1 || p.HorizontalSlices < 1:
		return Mesh{}, fmt.Errorf("sphere needs at least one slice each way, got %dx%d", p.VerticalSlices, p.HorizontalSlices)
	case p.SourceHorizontalFOV <= 0 || p.SourceVerticalFOV <= 0:
		return Mesh{}, errors.New("source field of view must be positive")
	}

	var (
		cols  = p.VerticalSlices + 1
		rows  = p.HorizontalSlices + 1
		count = cols * rows

		verticalScale    = p.ClipVerticalFOV / MaxVerticalFOV
		verticalOffset   = (1 - verticalScale) / 2
		horizontalScale  = p.ClipHorizontalFOV / MaxHorizontalFOV
		horizontalOffset = (1 - horizontalScale) / 2

		uvHScale  = p.ClipHorizontalFOV / p.SourceHorizontalFOV
		uvHOffset = (1 - uvHScale) / 2
		uvVScale  = p.ClipVerticalFOV / p.SourceVerticalFOV
		uvVOffset = (1 - uvVScale) / 2
	)

	mesh := Mesh{
		Name:      "videoSphere",
		Positions: make([]Vec3, count),
		Normals:   make([]Vec3, count),
		UVs:       make([]Vec2, count),
		Indices:   make([]uint32, 0, p.VerticalSlices*p.HorizontalSlices*6),
	}

	for y := 0; y <= p.HorizontalSlices; y++ {
		polar := math.Pi*float64(y)/float64(p.HorizontalSlices)*verticalScale + verticalOffset*math.Pi
		sinPolar, cosPolar := math.Sincos(polar)

		for x := 0; x <= p.VerticalSlices; x++ {
			azimuth := 2*math.Pi*float64(x)/float64(p.VerticalSlices)*horizontalScale + horizontalOffset*2*math.Pi
			sinAzimuth, cosAzimuth := math.Sincos(azimuth)

			// unit direction; the viewer sits at the center so normals point back along it
			dx, dy, dz := sinPolar*cosAzimuth, cosPolar, sinPolar*sinAzimuth

			i := x + y*cols
			mesh.Positions[i] = Vec3{float32(dx * p.Radius), float32(dy * p.Radius), float32(dz * p.Radius)}
			mesh.Normals[i] = Vec3{float32(-dx), float32(-dy), float32(-dz)}

			u := float64(x) / float64(p.VerticalSlices)
			v := 1 - float64(y)/float64(p.HorizontalSlices)
			mesh.UVs[i] = Vec2{float32(u*uvHScale + uvHOffset), float32(v*uvVScale + uvVOffset)}
		}
	}

	for y := 0; y < p.HorizontalSlices; y++ {
		for x := 0; x < p.VerticalSlices; x++ {
			i0 := uint32(x + y*cols)
			i1 := i0 + 1
			i2 := i0 + uint32(cols)
			i3 := i2 + 1

			mesh.Indices = append(mesh.Indices, i1, i0, i3, i3, i0, i2)
		}
	}

	return mesh, nil
}
