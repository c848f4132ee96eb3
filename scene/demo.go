package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/geometry"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/texture"
)

const (
	WaveMeshName = "wave"
	DemoFOV      = 10
	DemoColor    = "lightblue"
)

var DemoCameraPosition = mgl32.Vec3{0, 0, 5}

// NewDemo builds the wave scene: a narrow camera five units back and one
// lightblue wave plane whose texture is tex.
func NewDemo(reg *material.Registry, tex *texture.Future) (*Builder, error) {
	color, err := material.ColorByName(DemoColor)
	if err != nil {
		return nil, fmt.Errorf("demo color: %w", err)
	}
	b := NewBuilder(reg).
		Camera(DemoFOV, DemoCameraPosition).
		Mesh(WaveMeshName, geometry.DefaultPlane, material.WaveMaterialName, material.Uniforms{Color: color}).
		BindTexture(WaveMeshName, tex)
	return b, nil
}
