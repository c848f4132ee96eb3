// Package shader holds the GLSL and WGSL sources of the wave material and the
// presentation pass.
package shader

import "fmt"

// Uniform and attribute names shared by the sources and the renderers.
const (
	UniformTime       = "uTime"
	UniformColor      = "uColor"
	UniformTexture    = "uTexture"
	UniformProjection = "projectionMatrix"
	UniformModelView  = "modelViewMatrix"

	AttribPosition = "position"
	AttribUV       = "uv"
)

// ──────────────────────────────── Wave material ────────────────────────────────

// WebGL2 (GLSL ES 3.00) sources. They go through the translator before they
// reach a desktop driver.

const waveVertexSource = `#version 300 es
precision mediump float;

in vec3 position;
in vec2 uv;

uniform mat4 projectionMatrix;
uniform mat4 modelViewMatrix;
uniform float uTime;

out vec2 vUv;
out float vWave;

#pragma glslify: snoise3 = require(glsl-noise/simplex/3d)

void main() {
    vUv = uv;

    vec3 pos = position;
    float noiseFreq = 1.5;
    float noiseAmp = 0.25;
    vec3 noisePos = vec3(pos.x * noiseFreq + uTime, pos.y, pos.z);
    pos.z += snoise3(noisePos) * noiseAmp;
    vWave = pos.z;

    gl_Position = projectionMatrix * modelViewMatrix * vec4(pos, 1.0);
}
`

const waveFragmentSource = `#version 300 es
precision mediump float;

uniform vec3 uColor;
uniform float uTime;
uniform sampler2D uTexture;

in vec2 vUv;
in float vWave;

out vec4 fragColor;

void main() {
    float wave = vWave * 0.05;
    float r = texture(uTexture, vUv + wave).r;
    float g = texture(uTexture, vUv).g;
    float b = texture(uTexture, vUv + wave).b;

    vec3 texel = vec3(r, g, b);
    fragColor = vec4(texel, 1.0);
}
`

// WaveVertexSource returns the wave vertex stage with its noise chunk inlined.
func WaveVertexSource() (string, error) {
	src, err := Preprocess(waveVertexSource)
	if err != nil {
		return "", fmt.Errorf("wave vertex shader: %w", err)
	}
	return src, nil
}

// WaveFragmentSource returns the wave fragment stage.
func WaveFragmentSource() (string, error) {
	src, err := Preprocess(waveFragmentSource)
	if err != nil {
		return "", fmt.Errorf("wave fragment shader: %w", err)
	}
	return src, nil
}

// ──────────────────────────────── Presentation ─────────────────────────────────

const blitVertexSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

const blitVertexSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// BlitVertexSource draws a full-screen quad from a vec2 attribute at location 0.
func BlitVertexSource(isGLES bool) string {
	if isGLES {
		return blitVertexSourceGLES
	}
	return blitVertexSourceGL
}

// BlitFragmentSource copies u_texture to the bound framebuffer.
func BlitFragmentSource(isGLES bool) string {
	if isGLES {
		return blitFragmentSourceGLES
	}
	return blitFragmentSourceGL
}
