package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowave/texture"
)

// Texture is an RGBA8 2D texture.
type Texture struct {
	id     uint32
	width  int32
	height int32
}

// NewTexture uploads img flipped so that v=0 addresses its bottom row.
func NewTexture(img image.Image, wrap texture.Wrap, filter texture.Filter) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture image is nil")
	}
	rgba := texture.FlipVertical(texture.ToRGBA(img))
	width := int32(rgba.Rect.Dx())
	height := int32(rgba.Rect.Dy())
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture image is empty")
	}

	t := &Texture{width: width, height: height}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, getWrapMode(wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, getWrapMode(wrap))
	minFilter, magFilter := getFilterMode(filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func getWrapMode(wrap texture.Wrap) int32 {
	switch wrap {
	case texture.WrapRepeat:
		return gl.REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func getFilterMode(filter texture.Filter) (minFilter, magFilter int32) {
	switch filter {
	case texture.FilterNearest:
		return gl.NEAREST, gl.NEAREST
	default:
		return gl.LINEAR, gl.LINEAR
	}
}

func (t *Texture) ID() uint32 { return t.id }

func (t *Texture) Destroy() {
	gl.DeleteTextures(1, &t.id)
}
