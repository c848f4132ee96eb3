package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowave/scene"
)

// meshBuffers holds the GL objects for one mesh.
type meshBuffers struct {
	vao         uint32
	positionVBO uint32
	uvVBO       uint32
	ebo         uint32
	count       int32
}

// mesh returns the buffers for m, uploading its geometry on first use. The
// attribute layout follows the program that first draws it.
func (r *Renderer) mesh(m *scene.Mesh, p *materialProgram) (*meshBuffers, error) {
	if mb, ok := r.meshes[m.ID()]; ok {
		return mb, nil
	}
	geo := m.Geometry
	if geo == nil || len(geo.Indices) == 0 {
		return nil, fmt.Errorf("mesh %s has no geometry", m.Name())
	}

	mb := &meshBuffers{count: int32(len(geo.Indices))}
	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.positionVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(geo.Positions)*4, gl.Ptr(geo.Positions), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(uint32(p.positionAttr))
	gl.VertexAttribPointer(uint32(p.positionAttr), 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))

	if p.uvAttr >= 0 {
		gl.GenBuffers(1, &mb.uvVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, mb.uvVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(geo.UVs)*4, gl.Ptr(geo.UVs), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(uint32(p.uvAttr))
		gl.VertexAttribPointer(uint32(p.uvAttr), 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	}

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geo.Indices)*4, gl.Ptr(geo.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	r.meshes[m.ID()] = mb
	return mb, nil
}

func (mb *meshBuffers) Destroy() {
	gl.DeleteVertexArrays(1, &mb.vao)
	gl.DeleteBuffers(1, &mb.positionVBO)
	if mb.uvVBO != 0 {
		gl.DeleteBuffers(1, &mb.uvVBO)
	}
	gl.DeleteBuffers(1, &mb.ebo)
}
