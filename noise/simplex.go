// Package noise implements the 3D simplex noise used by the wave material's
// vertex stage.
//
// Simplex3 follows the Ashima Arts / glsl-noise "simplex/3d" formulation
// operation for operation, in float32, so the CPU result matches what the GPU
// computes for the same input up to driver rounding.
package noise

import "math"

type vec3 struct{ x, y, z float32 }

type vec4 struct{ x, y, z, w float32 }

const (
	cx = float32(1.0 / 6.0)
	cy = float32(1.0 / 3.0)

	// n_ in the GLSL source. The truncated decimal is intentional: float32
	// rounding of it lands just above 1/7, which keeps floor(j/7) exact.
	n7 = float32(0.142857142857)
)

// Simplex3 returns 3D simplex noise at (x, y, z), in roughly [-1, 1].
func Simplex3(x, y, z float32) float32 {
	v := vec3{x, y, z}

	// skew to find the simplex cell
	s := float32(v.x*cy) + float32(v.y*cy) + float32(v.z*cy)
	i := vec3{floor(v.x + s), floor(v.y + s), floor(v.z + s)}
	t := float32(i.x*cx) + float32(i.y*cx) + float32(i.z*cx)
	x0 := vec3{v.x - i.x + t, v.y - i.y + t, v.z - i.z + t}

	// corner ordering
	g := vec3{step(x0.y, x0.x), step(x0.z, x0.y), step(x0.x, x0.z)}
	l := vec3{1 - g.x, 1 - g.y, 1 - g.z}
	i1 := vec3{min(g.x, l.z), min(g.y, l.x), min(g.z, l.y)}
	i2 := vec3{max(g.x, l.z), max(g.y, l.x), max(g.z, l.y)}

	x1 := vec3{x0.x - i1.x + cx, x0.y - i1.y + cx, x0.z - i1.z + cx}
	x2 := vec3{x0.x - i2.x + cy, x0.y - i2.y + cy, x0.z - i2.z + cy}
	x3 := vec3{x0.x - 0.5, x0.y - 0.5, x0.z - 0.5}

	i = vec3{mod289(i.x), mod289(i.y), mod289(i.z)}
	p := permute4(vec4{i.z, i.z + i1.z, i.z + i2.z, i.z + 1})
	p = permute4(vec4{p.x + i.y, p.y + i.y + i1.y, p.z + i.y + i2.y, p.w + i.y + 1})
	p = permute4(vec4{p.x + i.x, p.y + i.x + i1.x, p.z + i.x + i2.x, p.w + i.x + 1})

	// gradients: 7x7 points over a square, mapped onto an octahedron
	nsx := float32(n7 * 2)
	nsy := float32(n7*0.5) - 1
	nsz := n7

	var gx, gy, gh [4]float32
	pa := [4]float32{p.x, p.y, p.z, p.w}
	for k, pk := range pa {
		j := pk - float32(49*floor(float32(float32(pk*nsz)*nsz)))
		xq := floor(float32(j * nsz))
		yq := floor(j - float32(7*xq))
		gx[k] = float32(xq*nsx) + nsy
		gy[k] = float32(yq*nsx) + nsy
		gh[k] = 1 - abs(gx[k]) - abs(gy[k])
	}

	var grad [4]vec3
	for k := 0; k < 4; k++ {
		sx := float32(floor(gx[k])*2) + 1
		sy := float32(floor(gy[k])*2) + 1
		sh := -step(gh[k], 0)
		grad[k] = vec3{gx[k] + float32(sx*sh), gy[k] + float32(sy*sh), gh[k]}
	}

	corners := [4]vec3{x0, x1, x2, x3}
	var n float32
	for k := 0; k < 4; k++ {
		norm := taylorInvSqrt(dot(grad[k], grad[k]))
		gk := vec3{float32(grad[k].x * norm), float32(grad[k].y * norm), float32(grad[k].z * norm)}
		m := max(0.6-dot(corners[k], corners[k]), 0)
		m = float32(m * m)
		n += float32(float32(m*m) * dot(gk, corners[k]))
	}
	return float32(42 * n)
}

func floor(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// step is GLSL step(edge, x).
func step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

func dot(a, b vec3) float32 {
	return float32(a.x*b.x) + float32(a.y*b.y) + float32(a.z*b.z)
}

func mod289(v float32) float32 {
	return v - float32(floor(float32(v*(1.0/289.0)))*289)
}

func permute(v float32) float32 {
	return mod289(float32((float32(v*34) + 1) * v))
}

func permute4(v vec4) vec4 {
	return vec4{permute(v.x), permute(v.y), permute(v.z), permute(v.w)}
}

func taylorInvSqrt(r float32) float32 {
	return 1.79284291400159 - float32(0.85373472095314*r)
}
