package playback

import (
	"github.com/panorama-cli/panorama/projection"
	"github.com/samber/mo"
)

// geometryKey holds every input of the geometry. A change to any of them means a rebuild.
type geometryKey struct {
	kind           projection.Kind
	horizontal     float64
	vertical       float64
	aspect         float64
	width, height  int
	cameraDistance float64
}

func (c *Controller) geometryKey() geometryKey {
	return geometryKey{
		kind:           c.state.Projection,
		horizontal:     c.state.HorizontalFOV,
		vertical:       c.state.VerticalFOV(),
		aspect:         c.state.AspectRatio,
		width:          c.state.Width,
		height:         c.state.Height,
		cameraDistance: c.state.CameraDistance,
	}
}

// Geometry builds the geometry for the current state.
func (c *Controller) Geometry() (projection.Geometry, error) {
	var (
		geometry projection.Geometry
		buildErr error
	)
	if err := c.exec(func() {
		geometry, buildErr = projection.Build(c.params())
	}); err != nil {
		return projection.Geometry{}, err
	}
	return geometry, buildErr
}

func (c *Controller) params() projection.Params {
	return projection.Params{
		Kind:           c.state.Projection,
		HorizontalFOV:  c.state.HorizontalFOV,
		VerticalFOV:    c.state.VerticalFOV(),
		Width:          c.state.Width,
		Height:         c.state.Height,
		AspectRatio:    c.state.AspectRatio,
		CameraDistance: c.state.CameraDistance,
		PlaneOffset:    c.opts.PlaneOffset,
		Radius:         c.opts.SphereRadius,
	}
}

// present hands new geometry to the renderer when its inputs changed.
func (c *Controller) present() {
	if c.opts.Renderer == nil || !c.state.IsLoaded() {
		return
	}

	key := c.geometryKey()
	if last, ok := c.presented.Get(); ok && last == key {
		return
	}
	c.presented = mo.Some(key)

	geometry, err := projection.Build(c.params())
	if err != nil {
		c.log.Warnf("build %s geometry: %v", key.kind, err)
		return
	}

	c.opts.Renderer.Present(geometry)
}
