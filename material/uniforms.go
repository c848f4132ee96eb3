package material

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// TextureHandle is a backend-assigned id for an uploaded texture. The zero
// handle means no texture is bound.
type TextureHandle uint32

// Color is a linear RGB triple in [0, 1].
type Color struct {
	R, G, B float32
}

// ColorFromRGBA converts an 8-bit color.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255}
}

// ColorByName looks up an SVG/CSS color keyword such as "lightblue".
func ColorByName(name string) (Color, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Color{}, fmt.Errorf("unknown color name %q", name)
	}
	return ColorFromRGBA(c), nil
}

// Uniforms is the uniform bundle a material uploads before each draw.
//
// Time is written by the host every frame, Color is constant for the
// material's lifetime and Texture is written once when the image resolves.
type Uniforms struct {
	Time    float32
	Color   Color
	Texture TextureHandle
}
