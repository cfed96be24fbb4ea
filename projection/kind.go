// Package projection builds the geometry a decoded video frame is mapped onto.
//
// Everything here is pure computation: a field of view, projection kind and frame
// shape go in, and a mesh plus the transform that places it in the scene comes out.
// The renderer that consumes the result lives outside this module.
package projection

import (
	"fmt"
	"strings"
)

// Kind describes how a frame maps onto 3D geometry.
type Kind string

const (
	// Rectilinear is a flat video shown on a plane in front of the viewer.
	Rectilinear Kind = "rectilinear"
	// Spherical covers a full or partial sphere around the viewer.
	Spherical Kind = "spherical"
	// Fisheye is mapped onto a partial sphere like Spherical.
	Fisheye Kind = "fisheye"
)

// Kinds lists the supported kinds.
func Kinds() []Kind {
	return []Kind{Rectilinear, Spherical, Fisheye}
}

// ParseKind accepts the kind names plus a few common aliases. An empty string is Rectilinear.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rectilinear", "flat":
		return Rectilinear, nil
	case "spherical", "sphere", "equirectangular", "360":
		return Spherical, nil
	case "fisheye":
		return Fisheye, nil
	default:
		return "", fmt.Errorf("unknown projection %q", s)
	}
}

// IsSpherical reports whether the kind is rendered on the inside of a sphere.
func (k Kind) IsSpherical() bool {
	return k == Spherical || k == Fisheye
}

func (k Kind) String() string {
	return string(k)
}
