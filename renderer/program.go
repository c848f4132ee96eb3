package renderer

import (
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/scene"
	"github.com/richinsley/gowave/shader"
	xlate "github.com/richinsley/gowave/translator"
)

// materialProgram is a linked program for one material type with its
// uniform and attribute locations resolved.
type materialProgram struct {
	program       uint32
	projectionLoc int32
	modelViewLoc  int32
	timeLoc       int32
	colorLoc      int32
	textureLoc    int32
	positionAttr  int32
	uvAttr        int32
}

// program returns the cached program for m's type, building it on first use.
func (r *Renderer) program(m material.Material) (*materialProgram, error) {
	if p, ok := r.programs[m.Type()]; ok {
		return p, nil
	}
	vsSource, fsSource, err := m.Sources()
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", m.Type(), err)
	}
	vs, err := xlate.Translate(vsSource, xlate.Vertex, r.isGLES)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", m.Type(), err)
	}
	fs, err := xlate.Translate(fsSource, xlate.Fragment, r.isGLES)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", m.Type(), err)
	}

	prog, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program for %s: %w", m.Type(), err)
	}

	p := &materialProgram{program: prog}
	gl.UseProgram(prog)
	p.projectionLoc = uniformLocation(prog, vs, shader.UniformProjection)
	p.modelViewLoc = uniformLocation(prog, vs, shader.UniformModelView)
	p.timeLoc = uniformLocation(prog, vs, shader.UniformTime)
	if p.timeLoc < 0 {
		p.timeLoc = uniformLocation(prog, fs, shader.UniformTime)
	}
	p.colorLoc = uniformLocation(prog, fs, shader.UniformColor)
	p.textureLoc = uniformLocation(prog, fs, shader.UniformTexture)
	p.positionAttr = gl.GetAttribLocation(prog, gl.Str(vs.Name(shader.AttribPosition)+"\x00"))
	p.uvAttr = gl.GetAttribLocation(prog, gl.Str(vs.Name(shader.AttribUV)+"\x00"))
	if p.textureLoc != -1 {
		gl.Uniform1i(p.textureLoc, 0)
	}
	gl.UseProgram(0)

	if p.positionAttr < 0 {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("material %s: vertex shader has no %s attribute", m.Type(), shader.AttribPosition)
	}
	log.Printf("Built program for material %s", m.Type())
	r.programs[m.Type()] = p
	return p, nil
}

func uniformLocation(program uint32, t *xlate.Translated, name string) int32 {
	if _, ok := t.Names[name]; !ok {
		return -1
	}
	return gl.GetUniformLocation(program, gl.Str(t.Name(name)+"\x00"))
}

// apply pushes the per-draw uniforms.
func (p *materialProgram) apply(call scene.DrawCall) {
	if p.projectionLoc != -1 {
		proj := call.Projection
		gl.UniformMatrix4fv(p.projectionLoc, 1, false, &proj[0])
	}
	if p.modelViewLoc != -1 {
		mv := call.ModelView()
		gl.UniformMatrix4fv(p.modelViewLoc, 1, false, &mv[0])
	}
	if p.timeLoc != -1 {
		gl.Uniform1f(p.timeLoc, call.Uniforms.Time)
	}
	if p.colorLoc != -1 {
		c := call.Uniforms.Color
		gl.Uniform3f(p.colorLoc, c.R, c.G, c.B)
	}
	if p.textureLoc != -1 {
		gl.Uniform1i(p.textureLoc, 0)
	}
}
