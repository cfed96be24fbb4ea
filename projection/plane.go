package projection

// Plane generates a width×depth quad in the XZ plane, centered on the origin with its normal
// along +Y. The far edge (-Z) carries the top of the frame.
func Plane(width, depth float64) Mesh {
	hw, hd := float32(width/2), float32(depth/2)

	return Mesh{
		Name: "videoPlane",
		Positions: []Vec3{
			{-hw, 0, -hd},
			{hw, 0, -hd},
			{-hw, 0, hd},
			{hw, 0, hd},
		},
		Normals: []Vec3{axisY, axisY, axisY, axisY},
		UVs: []Vec2{
			{0, 1},
			{1, 1},
			{0, 0},
			{1, 0},
		},
		Indices: []uint32{0, 2, 1, 1, 2, 3},
	}
}
