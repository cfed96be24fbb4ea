package stream

import (
	"github.com/panorama-cli/panorama/projection"
	"github.com/samber/mo"
)

// DefaultCameraDistance places a flat video in front of the viewer.
const DefaultCameraDistance = 50.0

// Metadata is optional caller-supplied information about the video.
type Metadata struct {
	// FieldOfView is the horizontal field of view in degrees.
	FieldOfView mo.Option[float64] `json:"fieldOfView"`
	// Projection of the frame.
	Projection projection.Kind `json:"projection"`
	// CameraDistance is only meaningful for rectilinear videos.
	CameraDistance float64 `json:"cameraDistance"`
}

// DefaultMetadata describes a flat video of unknown width.
func DefaultMetadata() Metadata {
	return Metadata{
		FieldOfView:    mo.None[float64](),
		Projection:     projection.Rectilinear,
		CameraDistance: DefaultCameraDistance,
	}
}

// WithDefaults fills zero fields.
func (m Metadata) WithDefaults() Metadata {
	if m.Projection == "" {
		m.Projection = projection.Rectilinear
	}
	if m.CameraDistance <= 0 {
		m.CameraDistance = DefaultCameraDistance
	}
	return m
}
