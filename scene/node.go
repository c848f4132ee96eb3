// Package scene holds the typed node tree rendered each frame: a perspective
// camera and textured meshes whose texture may still be loading.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/richinsley/gowave/geometry"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/texture"
)

// Node is any element of the scene tree.
type Node interface {
	ID() uuid.UUID
	Name() string
}

const (
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	id       uuid.UUID
	FOV      float32 // vertical, degrees
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Near     float32
	Far      float32
}

// NewCamera returns a camera at pos looking at the origin.
func NewCamera(fov float32, pos mgl32.Vec3) *Camera {
	return &Camera{
		id:       uuid.New(),
		FOV:      fov,
		Position: pos,
		Up:       mgl32.Vec3{0, 1, 0},
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

func (c *Camera) ID() uuid.UUID { return c.id }
func (c *Camera) Name() string  { return "camera" }

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Mesh pairs geometry with a material. A mesh with a texture binding is
// suspended until the bound future resolves.
type Mesh struct {
	id       uuid.UUID
	name     string
	Geometry *geometry.Buffers
	Material material.Material
	Model    mgl32.Mat4

	binding *binding
}

func (m *Mesh) ID() uuid.UUID { return m.id }
func (m *Mesh) Name() string  { return m.name }

// Suspended reports whether the mesh is waiting on its texture.
func (m *Mesh) Suspended() bool {
	return m.binding != nil && !m.binding.ready()
}

// TextureState reports the state of the bound texture. Meshes without a
// binding report Resolved.
func (m *Mesh) TextureState() texture.State {
	if m.binding == nil {
		return texture.Resolved
	}
	return m.binding.future.State()
}

type binding struct {
	future   *texture.Future
	fallback *texture.Future

	image    *texture.Image
	handle   material.TextureHandle
	uploaded bool
	failed   bool
}

func (b *binding) ready() bool {
	return b.image != nil
}
