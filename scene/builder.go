package scene

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/richinsley/gowave/geometry"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/texture"
)

var (
	// ErrNoCamera is returned by Build when no camera was added.
	ErrNoCamera = errors.New("scene has no camera")
	// ErrUnknownMesh is returned when a mesh name does not exist.
	ErrUnknownMesh = errors.New("unknown mesh")
	// ErrDuplicateMesh is returned when two meshes share a name.
	ErrDuplicateMesh = errors.New("duplicate mesh name")
)

// meshEntry is what Build needs to instantiate one mesh.
type meshEntry struct {
	name         string
	geometry     *geometry.Buffers
	materialName string
	uniforms     material.Uniforms
	texture      *texture.Future
}

// Builder assembles a Scene. The first error stops further construction and
// is returned by Build. Every Build returns a scene with its own cameras,
// meshes, materials and texture bindings.
type Builder struct {
	reg      *material.Registry
	camera   *Camera
	meshes   []*meshEntry
	byName   map[string]*meshEntry
	fallback image.Image
	wrap     texture.Wrap
	err      error
}

func NewBuilder(reg *material.Registry) *Builder {
	return &Builder{reg: reg, byName: make(map[string]*meshEntry), wrap: texture.WrapClamp}
}

func (b *Builder) Camera(fov float32, pos mgl32.Vec3) *Builder {
	if b.err == nil {
		b.camera = NewCamera(fov, pos)
	}
	return b
}

// Mesh adds a plane mesh using the registered material materialName.
func (b *Builder) Mesh(name string, plane geometry.Plane, materialName string, u material.Uniforms) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.byName[name]; exists {
		b.err = fmt.Errorf("%w: %s", ErrDuplicateMesh, name)
		return b
	}
	buffers, err := plane.Build()
	if err != nil {
		b.err = fmt.Errorf("mesh %s: %w", name, err)
		return b
	}
	if _, err := b.reg.New(materialName, u); err != nil {
		b.err = fmt.Errorf("mesh %s: %w", name, err)
		return b
	}
	m := &meshEntry{name: name, geometry: buffers, materialName: materialName, uniforms: u}
	b.meshes = append(b.meshes, m)
	b.byName[name] = m
	return b
}

// BindTexture makes meshName wait on f and sample its image once resolved.
func (b *Builder) BindTexture(meshName string, f *texture.Future) *Builder {
	if b.err != nil {
		return b
	}
	m, ok := b.byName[meshName]
	if !ok {
		b.err = fmt.Errorf("%w: %s", ErrUnknownMesh, meshName)
		return b
	}
	m.texture = f
	return b
}

// Fallback sets the image bound in place of any texture that fails to load.
// Without one a failed mesh stays suspended.
func (b *Builder) Fallback(img image.Image) *Builder {
	b.fallback = img
	return b
}

// Wrap sets how bound textures are addressed outside [0,1]. Default clamp.
func (b *Builder) Wrap(w texture.Wrap) *Builder {
	b.wrap = w
	return b
}

func (b *Builder) Build() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.camera == nil {
		return nil, ErrNoCamera
	}
	camera := *b.camera
	camera.id = uuid.New()
	s := &Scene{
		camera: &camera,
		meshes: make([]*Mesh, 0, len(b.meshes)),
		byName: make(map[string]*Mesh, len(b.meshes)),
		wrap:   b.wrap,
	}
	var fb *texture.Future
	if b.fallback != nil {
		fb = texture.ResolvedFuture(b.fallback)
	}
	for _, e := range b.meshes {
		mat, err := b.reg.New(e.materialName, e.uniforms)
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", e.name, err)
		}
		m := &Mesh{
			id:       uuid.New(),
			name:     e.name,
			Geometry: e.geometry,
			Material: mat,
			Model:    mgl32.Ident4(),
		}
		if e.texture != nil {
			m.binding = &binding{future: e.texture, fallback: fb}
		}
		s.meshes = append(s.meshes, m)
		s.byName[e.name] = m
	}
	return s, nil
}
