// Package softrender is a CPU rasterizer that runs a material's CPU shader
// stages. It renders scenes without a GPU.
package softrender

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/scene"
	"github.com/richinsley/gowave/texture"
)

// Renderer implements scene.Backend into an RGBA image.
type Renderer struct {
	Background color.RGBA

	img      *image.RGBA
	depth    []float32
	textures map[material.TextureHandle]*texture.Image
	drawn    int
}

func New() *Renderer {
	return &Renderer{textures: make(map[material.TextureHandle]*texture.Image)}
}

// Image returns the last rendered frame.
func (r *Renderer) Image() *image.RGBA { return r.img }

// Drawn returns the number of pixels written in the current frame.
func (r *Renderer) Drawn() int { return r.drawn }

func (r *Renderer) Begin(width, height int) {
	if r.img == nil || r.img.Rect.Dx() != width || r.img.Rect.Dy() != height {
		r.img = image.NewRGBA(image.Rect(0, 0, width, height))
		r.depth = make([]float32, width*height)
	}
	for i := 0; i < len(r.img.Pix); i += 4 {
		r.img.Pix[i] = r.Background.R
		r.img.Pix[i+1] = r.Background.G
		r.img.Pix[i+2] = r.Background.B
		r.img.Pix[i+3] = r.Background.A
	}
	for i := range r.depth {
		r.depth[i] = math.MaxFloat32
	}
	r.drawn = 0
}

func (r *Renderer) UploadTexture(img image.Image) (material.TextureHandle, error) {
	if img == nil {
		return 0, fmt.Errorf("texture image is nil")
	}
	h := material.TextureHandle(len(r.textures) + 1)
	r.textures[h] = texture.NewImage(img)
	return h, nil
}

func (r *Renderer) End() {}

type vertex struct {
	x, y, z float32 // screen space, z in NDC
	invW    float32
	u, v    float32
	wave    float32
}

func (r *Renderer) Draw(call scene.DrawCall) error {
	if r.img == nil {
		return fmt.Errorf("draw called before Begin")
	}
	sh, ok := call.Material.(material.CPUShader)
	if !ok {
		return fmt.Errorf("material %s has no CPU shader", call.Material.Type())
	}

	var sampler material.Sampler
	if call.Texture != nil {
		sampler = call.Texture
	} else if t, ok := r.textures[call.Uniforms.Texture]; ok {
		sampler = t
	}

	geo := call.Mesh.Geometry
	mvp := call.MVP()
	w, h := float32(r.img.Rect.Dx()), float32(r.img.Rect.Dy())

	verts := make([]vertex, geo.VertexCount())
	visible := make([]bool, len(verts))
	for i := range verts {
		p := geo.Position(i)
		uv := geo.UV(i)
		pos, wave := sh.Vertex(mgl32.Vec3{p[0], p[1], p[2]}, call.Uniforms.Time)
		clip := mvp.Mul4x1(pos.Vec4(1))
		if clip[3] <= 0 {
			continue
		}
		invW := 1 / clip[3]
		verts[i] = vertex{
			x:    (clip[0]*invW*0.5 + 0.5) * w,
			y:    (0.5 - clip[1]*invW*0.5) * h,
			z:    clip[2] * invW,
			invW: invW,
			u:    uv[0],
			v:    uv[1],
			wave: wave,
		}
		visible[i] = true
	}

	idx := geo.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		if !visible[a] || !visible[b] || !visible[c] {
			continue
		}
		r.triangle(sh, sampler, &verts[a], &verts[b], &verts[c])
	}
	return nil
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (r *Renderer) triangle(sh material.CPUShader, s material.Sampler, a, b, c *vertex) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 {
		return
	}
	bounds := r.img.Rect
	minX := clampInt(int(math.Floor(float64(min3(a.x, b.x, c.x)))), 0, bounds.Dx()-1)
	maxX := clampInt(int(math.Ceil(float64(max3(a.x, b.x, c.x)))), 0, bounds.Dx()-1)
	minY := clampInt(int(math.Floor(float64(min3(a.y, b.y, c.y)))), 0, bounds.Dy()-1)
	maxY := clampInt(int(math.Ceil(float64(max3(a.y, b.y, c.y)))), 0, bounds.Dy()-1)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			cx, cy := float32(px)+0.5, float32(py)+0.5
			w0 := edge(b.x, b.y, c.x, c.y, cx, cy) / area
			w1 := edge(c.x, c.y, a.x, a.y, cx, cy) / area
			w2 := edge(a.x, a.y, b.x, b.y, cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			di := py*bounds.Dx() + px
			if z >= r.depth[di] {
				continue
			}

			// Perspective-correct varyings.
			p0, p1, p2 := w0*a.invW, w1*b.invW, w2*c.invW
			norm := 1 / (p0 + p1 + p2)
			uv := mgl32.Vec2{
				(p0*a.u + p1*b.u + p2*c.u) * norm,
				(p0*a.v + p1*b.v + p2*c.v) * norm,
			}
			wave := (p0*a.wave + p1*b.wave + p2*c.wave) * norm

			col := sh.Fragment(s, uv, wave)
			r.depth[di] = z
			off := r.img.PixOffset(px, py)
			r.img.Pix[off] = toByte(col[0])
			r.img.Pix[off+1] = toByte(col[1])
			r.img.Pix[off+2] = toByte(col[2])
			r.img.Pix[off+3] = toByte(col[3])
			r.drawn++
		}
	}
}

// SavePNG writes the last frame to path.
func (r *Renderer) SavePNG(path string) error {
	if r.img == nil {
		return fmt.Errorf("nothing rendered")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, r.img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func toByte(c float32) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(math.Round(float64(c) * 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}
