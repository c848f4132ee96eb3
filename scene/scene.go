package scene

import (
	"fmt"
	"image"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/texture"
)

// DrawCall is one mesh draw as issued to a Backend.
type DrawCall struct {
	Mesh       *Mesh
	Material   material.Material
	Uniforms   material.Uniforms
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	// Texture is the CPU view of the bound image, nil when none is bound.
	Texture *texture.Image
}

// ModelView returns View * Model.
func (d DrawCall) ModelView() mgl32.Mat4 {
	return d.View.Mul4(d.Model)
}

// MVP returns Projection * View * Model.
func (d DrawCall) MVP() mgl32.Mat4 {
	return d.Projection.Mul4(d.View).Mul4(d.Model)
}

// Backend executes draw calls. A scene uploads each texture to its backend
// once, so a scene should be rendered by a single backend.
type Backend interface {
	Begin(width, height int)
	UploadTexture(img image.Image) (material.TextureHandle, error)
	Draw(call DrawCall) error
	End()
}

// Scene is a built node tree.
type Scene struct {
	camera *Camera
	meshes []*Mesh
	byName map[string]*Mesh
	wrap   texture.Wrap
}

func (s *Scene) Camera() *Camera { return s.camera }

// Meshes returns the meshes in insertion order.
func (s *Scene) Meshes() []*Mesh { return s.meshes }

func (s *Scene) Mesh(name string) (*Mesh, error) {
	m, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMesh, name)
	}
	return m, nil
}

// Nodes returns the camera followed by the meshes.
func (s *Scene) Nodes() []Node {
	nodes := make([]Node, 0, len(s.meshes)+1)
	nodes = append(nodes, s.camera)
	for _, m := range s.meshes {
		nodes = append(nodes, m)
	}
	return nodes
}

// Update feeds the clock to every material and advances texture bindings.
func (s *Scene) Update(t float32) {
	for _, m := range s.meshes {
		m.Material.SetTime(t)
		if m.binding != nil {
			s.poll(m)
		}
	}
}

func (s *Scene) poll(m *Mesh) {
	b := m.binding
	if b.ready() {
		return
	}
	switch b.future.State() {
	case texture.Pending:
	case texture.Resolved:
		img, _ := b.future.Result()
		b.image = s.newImage(img)
	case texture.Failed:
		if !b.failed {
			_, err := b.future.Result()
			log.Printf("Texture for mesh %s failed to load: %v", m.name, err)
			b.failed = true
		}
		if b.fallback != nil {
			img, _ := b.fallback.Result()
			log.Printf("Mesh %s: using fallback texture", m.name)
			b.image = s.newImage(img)
		}
	}
}

func (s *Scene) newImage(img image.Image) *texture.Image {
	t := texture.NewImage(img)
	t.Wrap = s.wrap
	return t
}

// Render draws every mesh that is not suspended. Update must run first in
// the same frame.
func (s *Scene) Render(backend Backend, width, height int) error {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	view := s.camera.View()
	proj := s.camera.Projection(aspect)

	backend.Begin(width, height)
	defer backend.End()

	for _, m := range s.meshes {
		if m.Suspended() {
			continue
		}
		var tex *texture.Image
		if b := m.binding; b != nil {
			if !b.uploaded {
				h, err := backend.UploadTexture(b.image.RGBA())
				if err != nil {
					return fmt.Errorf("failed to upload texture for mesh %s: %w", m.name, err)
				}
				b.handle = h
				b.uploaded = true
				m.Material.SetTexture(h)
			}
			tex = b.image
		}
		call := DrawCall{
			Mesh:       m,
			Material:   m.Material,
			Uniforms:   *m.Material.Uniforms(),
			Model:      m.Model,
			View:       view,
			Projection: proj,
			Texture:    tex,
		}
		if err := backend.Draw(call); err != nil {
			return fmt.Errorf("failed to draw mesh %s: %w", m.name, err)
		}
	}
	return nil
}

// Frame runs Update then Render.
func (s *Scene) Frame(backend Backend, t float32, width, height int) error {
	s.Update(t)
	return s.Render(backend, width, height)
}
