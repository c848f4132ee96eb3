// Package geometry builds the vertex data meshes are drawn from.
package geometry

import "fmt"

// Buffers holds de-interleaved vertex attributes and a triangle index list.
type Buffers struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex
	Indices   []uint32  // three per triangle
}

// VertexCount returns the number of vertices in b.
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / 3
}

// TriangleCount returns the number of triangles in b.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// Position returns the object-space position of vertex i.
func (b *Buffers) Position(i int) [3]float32 {
	return [3]float32{b.Positions[3*i], b.Positions[3*i+1], b.Positions[3*i+2]}
}

// UV returns the texture coordinate of vertex i.
func (b *Buffers) UV(i int) [2]float32 {
	return [2]float32{b.UVs[2*i], b.UVs[2*i+1]}
}

// Plane is a flat rectangle in the XY plane centred on the origin, facing +Z,
// subdivided into a WidthSegments x HeightSegments grid.
type Plane struct {
	Width          float32
	Height         float32
	WidthSegments  int
	HeightSegments int
}

// DefaultPlane is the plane the wave demo renders.
var DefaultPlane = Plane{Width: 0.4, Height: 0.6, WidthSegments: 16, HeightSegments: 16}

// Build tessellates the plane. Row 0 is the top edge (v = 1), matching the
// layout used by three.js so UVs map the image upright.
func (p Plane) Build() (*Buffers, error) {
	if p.WidthSegments < 1 || p.HeightSegments < 1 {
		return nil, fmt.Errorf("plane needs at least one segment per axis, got %dx%d", p.WidthSegments, p.HeightSegments)
	}

	gridX, gridY := p.WidthSegments, p.HeightSegments
	gridX1, gridY1 := gridX+1, gridY+1
	halfW, halfH := p.Width/2, p.Height/2
	segW := p.Width / float32(gridX)
	segH := p.Height / float32(gridY)

	n := gridX1 * gridY1
	b := &Buffers{
		Positions: make([]float32, 0, n*3),
		Normals:   make([]float32, 0, n*3),
		UVs:       make([]float32, 0, n*2),
		Indices:   make([]uint32, 0, gridX*gridY*6),
	}

	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - halfW
			b.Positions = append(b.Positions, x, -y, 0)
			b.Normals = append(b.Normals, 0, 0, 1)
			b.UVs = append(b.UVs, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}

	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := uint32(ix + gridX1*iy)
			bl := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			b.Indices = append(b.Indices, a, bl, d, bl, c, d)
		}
	}
	return b, nil
}
