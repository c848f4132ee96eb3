// Package material defines shader materials: their uniform bundle, their GPU
// sources and a CPU rendition of their shading used by the software renderer.
package material

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/noise"
	"github.com/richinsley/gowave/shader"
)

// WaveMaterialName is the registry name of the wave material.
const WaveMaterialName = "waveShaderMaterial"

// Displacement constants of the wave vertex stage.
const (
	NoiseFrequency = 1.5
	NoiseAmplitude = 0.25
	// UVShift scales the interpolated wave into the red/blue sample offset.
	UVShift = 0.05
)

// Sampler returns the texel at a UV coordinate.
type Sampler interface {
	Sample(uv mgl32.Vec2) mgl32.Vec4
}

// Material is a shader program descriptor attached to a mesh.
type Material interface {
	// Type is the registry name the material was created under.
	Type() string
	Uniforms() *Uniforms
	SetTime(t float32)
	SetTexture(h TextureHandle)
	// Sources returns the WebGL2 vertex and fragment stages.
	Sources() (vertex, fragment string, err error)
}

// CPUShader is implemented by materials the software renderer can run.
type CPUShader interface {
	// Vertex returns the displaced object-space position and the scalar
	// varying passed to the fragment stage.
	Vertex(pos mgl32.Vec3, t float32) (mgl32.Vec3, float32)
	// Fragment shades one pixel from interpolated uv and varying.
	Fragment(s Sampler, uv mgl32.Vec2, varying float32) mgl32.Vec4
}

// WaveMaterial displaces a surface with simplex noise along z and samples its
// texture with red and blue shifted by the displacement.
type WaveMaterial struct {
	uniforms Uniforms
}

// NewWaveMaterial returns a wave material holding a copy of u. Values are not
// validated.
func NewWaveMaterial(u Uniforms) *WaveMaterial {
	return &WaveMaterial{uniforms: u}
}

func (m *WaveMaterial) Type() string { return WaveMaterialName }

func (m *WaveMaterial) Uniforms() *Uniforms { return &m.uniforms }

func (m *WaveMaterial) SetTime(t float32) { m.uniforms.Time = t }

func (m *WaveMaterial) Time() float32 { return m.uniforms.Time }

func (m *WaveMaterial) SetColor(c Color) { m.uniforms.Color = c }

func (m *WaveMaterial) SetTexture(h TextureHandle) { m.uniforms.Texture = h }

func (m *WaveMaterial) Sources() (string, string, error) {
	vs, err := shader.WaveVertexSource()
	if err != nil {
		return "", "", err
	}
	fs, err := shader.WaveFragmentSource()
	if err != nil {
		return "", "", err
	}
	return vs, fs, nil
}

// Displace runs the vertex stage on one object-space position at time t and
// returns the displaced position and its wave value (the displaced z).
func Displace(pos mgl32.Vec3, t float32) (mgl32.Vec3, float32) {
	n := noise.Simplex3(float32(pos[0]*NoiseFrequency)+t, pos[1], pos[2])
	pos[2] += float32(n * NoiseAmplitude)
	return pos, pos[2]
}

// UVOffset is the offset added to both UV axes for the red and blue samples.
func UVOffset(wave float32) float32 {
	return float32(wave * UVShift)
}

// Shade runs the fragment stage. A nil sampler samples black, like an
// unbound texture unit.
func Shade(s Sampler, uv mgl32.Vec2, wave float32) mgl32.Vec4 {
	if s == nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	off := UVOffset(wave)
	shifted := mgl32.Vec2{uv[0] + off, uv[1] + off}
	r := s.Sample(shifted)[0]
	g := s.Sample(uv)[1]
	b := s.Sample(shifted)[2]
	return mgl32.Vec4{r, g, b, 1}
}

func (m *WaveMaterial) Vertex(pos mgl32.Vec3, t float32) (mgl32.Vec3, float32) {
	return Displace(pos, t)
}

func (m *WaveMaterial) Fragment(s Sampler, uv mgl32.Vec2, wave float32) mgl32.Vec4 {
	return Shade(s, uv, wave)
}
