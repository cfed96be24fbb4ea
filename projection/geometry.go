package projection

import (
	"encoding/json"
	"io"
	"math"
)

// Vec2 is a texture coordinate (u, v).
type Vec2 [2]float32

// Vec3 is a position or direction (x, y, z).
type Vec3 [3]float32

// Length returns the Euclidean length.
func (v Vec3) Length() float64 {
	return math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]) + float64(v[2])*float64(v[2]))
}

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return float64(v[0])*float64(o[0]) + float64(v[1])*float64(o[1]) + float64(v[2])*float64(o[2])
}

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// AxisAngle returns the rotation of angle radians about axis. The axis must be unit length.
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{
		float32(float64(axis[0]) * s),
		float32(float64(axis[1]) * s),
		float32(float64(axis[2]) * s),
		float32(c),
	}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	x, y, z, w := float64(q[0]), float64(q[1]), float64(q[2]), float64(q[3])
	vx, vy, vz := float64(v[0]), float64(v[1]), float64(v[2])

	// t = 2 * cross(q.xyz, v)
	tx := 2 * (y*vz - z*vy)
	ty := 2 * (z*vx - x*vz)
	tz := 2 * (x*vy - y*vx)

	return Vec3{
		float32(vx + w*tx + (y*tz - z*ty)),
		float32(vy + w*ty + (z*tx - x*tz)),
		float32(vz + w*tz + (x*ty - y*tx)),
	}
}

var (
	axisX = Vec3{1, 0, 0}
	axisY = Vec3{0, 1, 0}
)

// Transform places a mesh in the scene.
type Transform struct {
	Scale       Vec3 `json:"scale"`
	Rotation    Quat `json:"rotation"`
	Translation Vec3 `json:"translation"`
}

// Mesh is an indexed triangle list. Positions, Normals and UVs have the same length.
type Mesh struct {
	Name      string   `json:"name"`
	Positions []Vec3   `json:"positions"`
	Normals   []Vec3   `json:"normals"`
	UVs       []Vec2   `json:"uvs"`
	Indices   []uint32 `json:"indices"`
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Geometry pairs a mesh with its placement. The two are only valid together.
type Geometry struct {
	Kind      Kind      `json:"kind"`
	Mesh      Mesh      `json:"mesh"`
	Transform Transform `json:"transform"`
}

// Encode writes g as JSON.
func Encode(w io.Writer, g Geometry) error {
	return json.NewEncoder(w).Encode(g)
}
