package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
)

// waveWGSL is the wave material for WebGPU/Vulkan consumers. Matrices are
// passed as columns and every vector op uses matching operand types, which
// keeps the module inside what the naga SPIR-V backend lowers.
const waveWGSL = `
struct Uniforms {
    mvp0: vec4<f32>,
    mvp1: vec4<f32>,
    mvp2: vec4<f32>,
    mvp3: vec4<f32>,
    color: vec4<f32>,
    time: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var uSampler: sampler;
@group(0) @binding(2) var uTexture: texture_2d<f32>;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) wave: f32,
}

fn mod289v3(x: vec3<f32>) -> vec3<f32> {
    return x - floor(x * vec3<f32>(1.0 / 289.0)) * vec3<f32>(289.0);
}

fn mod289v4(x: vec4<f32>) -> vec4<f32> {
    return x - floor(x * vec4<f32>(1.0 / 289.0)) * vec4<f32>(289.0);
}

fn permute(x: vec4<f32>) -> vec4<f32> {
    return mod289v4((x * vec4<f32>(34.0) + vec4<f32>(1.0)) * x);
}

fn taylorInvSqrt(r: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(1.79284291400159) - vec4<f32>(0.85373472095314) * r;
}

fn snoise3(v: vec3<f32>) -> f32 {
    let cx = 1.0 / 6.0;
    let cy = 1.0 / 3.0;

    var i = floor(v + vec3<f32>(dot(v, vec3<f32>(cy))));
    let x0 = v - i + vec3<f32>(dot(i, vec3<f32>(cx)));

    let g = step(x0.yzx, x0.xyz);
    let l = vec3<f32>(1.0) - g;
    let i1 = min(g.xyz, l.zxy);
    let i2 = max(g.xyz, l.zxy);

    let x1 = x0 - i1 + vec3<f32>(cx);
    let x2 = x0 - i2 + vec3<f32>(cy);
    let x3 = x0 - vec3<f32>(0.5);

    i = mod289v3(i);
    var p = permute(vec4<f32>(i.z) + vec4<f32>(0.0, i1.z, i2.z, 1.0));
    p = permute(p + vec4<f32>(i.y) + vec4<f32>(0.0, i1.y, i2.y, 1.0));
    p = permute(p + vec4<f32>(i.x) + vec4<f32>(0.0, i1.x, i2.x, 1.0));

    let n7 = 0.142857142857;
    let nsx = n7 * 2.0;
    let nsy = n7 * 0.5 - 1.0;

    let j = p - vec4<f32>(49.0) * floor(p * vec4<f32>(n7 * n7));
    let xq = floor(j * vec4<f32>(n7));
    let yq = floor(j - vec4<f32>(7.0) * xq);

    let gx = xq * vec4<f32>(nsx) + vec4<f32>(nsy);
    let gy = yq * vec4<f32>(nsx) + vec4<f32>(nsy);
    let h = vec4<f32>(1.0) - abs(gx) - abs(gy);

    let b0 = vec4<f32>(gx.x, gx.y, gy.x, gy.y);
    let b1 = vec4<f32>(gx.z, gx.w, gy.z, gy.w);
    let s0 = floor(b0) * vec4<f32>(2.0) + vec4<f32>(1.0);
    let s1 = floor(b1) * vec4<f32>(2.0) + vec4<f32>(1.0);
    let sh = vec4<f32>(0.0) - step(h, vec4<f32>(0.0));

    let a0 = b0.xzyw + s0.xzyw * sh.xxyy;
    let a1 = b1.xzyw + s1.xzyw * sh.zzww;

    var p0 = vec3<f32>(a0.x, a0.y, h.x);
    var p1 = vec3<f32>(a0.z, a0.w, h.y);
    var p2 = vec3<f32>(a1.x, a1.y, h.z);
    var p3 = vec3<f32>(a1.z, a1.w, h.w);

    let norm = taylorInvSqrt(vec4<f32>(dot(p0, p0), dot(p1, p1), dot(p2, p2), dot(p3, p3)));
    p0 = p0 * vec3<f32>(norm.x);
    p1 = p1 * vec3<f32>(norm.y);
    p2 = p2 * vec3<f32>(norm.z);
    p3 = p3 * vec3<f32>(norm.w);

    var m = max(vec4<f32>(0.6) - vec4<f32>(dot(x0, x0), dot(x1, x1), dot(x2, x2), dot(x3, x3)), vec4<f32>(0.0));
    m = m * m;
    return 42.0 * dot(m * m, vec4<f32>(dot(p0, x0), dot(p1, x1), dot(p2, x2), dot(p3, x3)));
}

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOut {
    let noisePos = vec3<f32>(position.x * 1.5 + u.time.x, position.y, position.z);
    let z = position.z + snoise3(noisePos) * 0.25;

    var result: VertexOut;
    result.uv = uv;
    result.wave = z;
    result.position = u.mvp0 * vec4<f32>(position.x) + u.mvp1 * vec4<f32>(position.y) + u.mvp2 * vec4<f32>(z) + u.mvp3;
    return result;
}

@fragment
fn fs_main(@location(0) uv: vec2<f32>, @location(1) wave: f32) -> @location(0) vec4<f32> {
    let offset = vec2<f32>(wave * 0.05);
    let r = textureSample(uTexture, uSampler, uv + offset).r;
    let g = textureSample(uTexture, uSampler, uv).g;
    let b = textureSample(uTexture, uSampler, uv + offset).b;
    return vec4<f32>(r, g, b, 1.0);
}
`

// WaveWGSL returns the WGSL rendition of the wave material.
func WaveWGSL() string {
	return waveWGSL
}

// CompileSPIRV compiles the WGSL wave material to a SPIR-V module holding
// both entry points. IR validation is not run.
func CompileSPIRV() ([]byte, error) {
	code, err := naga.CompileWithOptions(waveWGSL, naga.CompileOptions{
		SPIRVVersion: spirv.Version1_3,
		Validate:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile wave WGSL: %w", err)
	}
	return code, nil
}
