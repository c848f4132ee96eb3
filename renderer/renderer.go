// Package renderer is the OpenGL backend for scenes. It draws into an
// offscreen framebuffer that is either blitted to a window or read back for
// encoding.
package renderer

import (
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/google/uuid"
	"github.com/richinsley/gowave/graphics"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/scene"
	"github.com/richinsley/gowave/shader"
	"github.com/richinsley/gowave/texture"
)

var glInitOnce sync.Once

// Renderer implements scene.Backend on a GL context.
type Renderer struct {
	context     graphics.Context
	offscreen   *OffscreenRenderer
	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	width       int
	height      int
	recordMode  bool
	isGLES      bool

	wrap     texture.Wrap
	filter   texture.Filter
	programs map[string]*materialProgram
	meshes   map[uuid.UUID]*meshBuffers
	textures map[material.TextureHandle]*Texture
}

// NewRenderer initializes GL on ctx and allocates a width x height offscreen
// target. In record mode the target size stays fixed.
func NewRenderer(ctx graphics.Context, width, height int, recordMode bool, wrap texture.Wrap) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		width:      width,
		height:     height,
		recordMode: recordMode,
		isGLES:     ctx.IsGLES(),
		wrap:       wrap,
		filter:     texture.FilterLinear,
		programs:   make(map[string]*materialProgram),
		meshes:     make(map[uuid.UUID]*meshBuffers),
		textures:   make(map[material.TextureHandle]*Texture),
	}

	// Make the context current before initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	var err error
	r.offscreen, err = NewOffscreenRenderer(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
	}

	if err := r.initBlit(); err != nil {
		r.Shutdown()
		return nil, err
	}
	return r, nil
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

func (r *Renderer) initBlit() error {
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	r.blitProgram, err = newProgram(shader.BlitVertexSource(r.isGLES), shader.BlitFragmentSource(r.isGLES))
	if err != nil {
		return fmt.Errorf("failed to create blit program: %w", err)
	}
	return nil
}

// Shutdown releases all GL objects. The context is shut down by its owner.
func (r *Renderer) Shutdown() {
	for _, p := range r.programs {
		gl.DeleteProgram(p.program)
	}
	for _, m := range r.meshes {
		m.Destroy()
	}
	for _, t := range r.textures {
		t.Destroy()
	}
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	if r.offscreen != nil {
		r.offscreen.Destroy()
	}
}

// Begin binds the offscreen target, resizing it to match the window outside
// record mode, and clears it.
func (r *Renderer) Begin(width, height int) {
	if !r.recordMode && (width != r.offscreen.width || height != r.offscreen.height) && width > 0 && height > 0 {
		r.offscreen.Resize(width, height)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreen.fbo)
	gl.Viewport(0, 0, int32(r.offscreen.width), int32(r.offscreen.height))
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
}

func (r *Renderer) End() {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// UploadTexture creates a GL texture. The handle is the GL texture name.
func (r *Renderer) UploadTexture(img image.Image) (material.TextureHandle, error) {
	t, err := NewTexture(img, r.wrap, r.filter)
	if err != nil {
		return 0, err
	}
	h := material.TextureHandle(t.id)
	r.textures[h] = t
	return h, nil
}

func (r *Renderer) Draw(call scene.DrawCall) error {
	p, err := r.program(call.Material)
	if err != nil {
		return err
	}
	m, err := r.mesh(call.Mesh, p)
	if err != nil {
		return err
	}

	gl.UseProgram(p.program)
	p.apply(call)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(call.Uniforms.Texture))

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// present copies the offscreen color buffer to the default framebuffer.
func (r *Renderer) present() {
	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.offscreen.textureID)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
