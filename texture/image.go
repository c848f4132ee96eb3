package texture

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Wrap is the texture coordinate wrap mode.
type Wrap string

const (
	WrapClamp  Wrap = "clamp"
	WrapRepeat Wrap = "repeat"
)

// Filter is the texture magnification/minification filter.
type Filter string

const (
	FilterLinear  Filter = "linear"
	FilterNearest Filter = "nearest"
)

// Image samples an RGBA image the way a GL texture uploaded with flipY does:
// v=0 addresses the bottom row of the source image.
type Image struct {
	img    *image.RGBA
	Wrap   Wrap
	Filter Filter
}

// NewImage wraps img for sampling with clamp wrap and linear filtering.
func NewImage(img image.Image) *Image {
	return &Image{img: ToRGBA(img), Wrap: WrapClamp, Filter: FilterLinear}
}

// RGBA returns the underlying pixels.
func (t *Image) RGBA() *image.RGBA { return t.img }

// Size returns the image width and height in texels.
func (t *Image) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the filtered color at uv with components in [0,1].
func (t *Image) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	w, h := t.Size()
	if w == 0 || h == 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	x := float64(uv[0])*float64(w) - 0.5
	y := float64(uv[1])*float64(h) - 0.5
	if t.Filter == FilterNearest {
		return t.texel(int(math.Floor(x+0.5)), int(math.Floor(y+0.5)))
	}

	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := float32(x-x0), float32(y-y0)
	ix, iy := int(x0), int(y0)

	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)

	bottom := c00.Mul(1 - fx).Add(c10.Mul(fx))
	top := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return bottom.Mul(1 - fy).Add(top.Mul(fy))
}

// texel fetches the texel at GL coordinates (x, y), y counted from the bottom.
func (t *Image) texel(x, y int) mgl32.Vec4 {
	w, h := t.Size()
	x = wrapIndex(x, w, t.Wrap)
	y = wrapIndex(y, h, t.Wrap)
	row := h - 1 - y
	off := t.img.PixOffset(t.img.Rect.Min.X+x, t.img.Rect.Min.Y+row)
	p := t.img.Pix[off : off+4]
	return mgl32.Vec4{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

func wrapIndex(i, n int, mode Wrap) int {
	if mode == WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// FlipVertical returns a copy of src with its rows reversed, the layout GL
// expects for an image whose first row is the top.
func FlipVertical(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	height := bounds.Dy()
	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcOff := src.PixOffset(bounds.Min.X, bounds.Min.Y+(height-1)-y)
		copy(flipped.Pix[y*flipped.Stride:], src.Pix[srcOff:srcOff+rowSize])
	}
	return flipped
}
