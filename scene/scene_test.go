package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/geometry"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gate struct {
	release chan struct{}
	img     image.Image
	err     error
}

func newGate(img image.Image, err error) *gate {
	return &gate{release: make(chan struct{}), img: img, err: err}
}

func (g *gate) Load(ctx context.Context) (image.Image, error) {
	<-g.release
	return g.img, g.err
}

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func buildDemo(t *testing.T, f *texture.Future) *Scene {
	t.Helper()
	b, err := NewDemo(material.DefaultRegistry(), f)
	require.NoError(t, err)
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func settle(t *testing.T, f *texture.Future) {
	t.Helper()
	_, _ = f.Wait(context.Background())
}

func TestSuspendedUntilResolved(t *testing.T) {
	g := newGate(solid(color.RGBA{255, 0, 0, 255}), nil)
	f := texture.Load(context.Background(), g)
	s := buildDemo(t, f)
	rec := &Recorder{}

	require.NoError(t, s.Frame(rec, 0.1, 800, 600))
	assert.Empty(t, rec.Calls)
	assert.Empty(t, rec.Uploads)

	close(g.release)
	settle(t, f)

	require.NoError(t, s.Frame(rec, 0.2, 800, 600))
	require.Len(t, rec.Calls, 1)
	require.Len(t, rec.Uploads, 1)
	assert.True(t, rec.DrewTexture(1))
	assert.Equal(t, material.TextureHandle(1), rec.Calls[0].Uniforms.Texture)
	assert.NotNil(t, rec.Calls[0].Texture)

	// Uploaded once.
	require.NoError(t, s.Frame(rec, 0.3, 800, 600))
	assert.Len(t, rec.Uploads, 1)
	assert.True(t, rec.DrewTexture(1))
	assert.Equal(t, 3, rec.Frames)
}

func TestBuildsAreIndependent(t *testing.T) {
	b, err := NewDemo(material.DefaultRegistry(), texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	require.NoError(t, err)
	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	m1, err := first.Mesh(WaveMeshName)
	require.NoError(t, err)
	m2, err := second.Mesh(WaveMeshName)
	require.NoError(t, err)
	assert.NotSame(t, m1, m2)
	assert.NotEqual(t, m1.ID(), m2.ID())
	assert.NotSame(t, first.Camera(), second.Camera())

	rec1 := &Recorder{}
	require.NoError(t, first.Frame(rec1, 1.5, 100, 100))
	require.Len(t, rec1.Uploads, 1)
	assert.Equal(t, float32(1.5), m1.Material.Uniforms().Time)
	assert.Zero(t, m2.Material.Uniforms().Time)

	// The second scene uploads its own copy of the texture.
	rec2 := &Recorder{}
	require.NoError(t, second.Frame(rec2, 0.5, 100, 100))
	assert.Len(t, rec2.Uploads, 1)
	assert.True(t, rec2.DrewTexture(1))
	assert.Equal(t, float32(1.5), m1.Material.Uniforms().Time)
}

func TestTimeFeed(t *testing.T) {
	s := buildDemo(t, texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	rec := &Recorder{}
	m, err := s.Mesh(WaveMeshName)
	require.NoError(t, err)

	for _, tm := range []float32{0.5, 1.25, 3.75} {
		require.NoError(t, s.Frame(rec, tm, 100, 100))
		assert.Equal(t, tm, m.Material.Uniforms().Time)
		require.Len(t, rec.Calls, 1)
		assert.Equal(t, tm, rec.Calls[0].Uniforms.Time)
	}
}

func TestFailedStaysSuspended(t *testing.T) {
	s := buildDemo(t, texture.FailedFuture(errors.New("no network")))
	rec := &Recorder{}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Frame(rec, float32(i), 100, 100))
		assert.Empty(t, rec.Calls)
	}
	m, _ := s.Mesh(WaveMeshName)
	assert.True(t, m.Suspended())
	assert.Equal(t, texture.Failed, m.TextureState())
}

func TestFailedUsesFallback(t *testing.T) {
	b, err := NewDemo(material.DefaultRegistry(), texture.FailedFuture(errors.New("no network")))
	require.NoError(t, err)
	s, err := b.Fallback(solid(color.RGBA{0, 0, 255, 255})).Build()
	require.NoError(t, err)

	rec := &Recorder{}
	require.NoError(t, s.Frame(rec, 0, 100, 100))
	require.Len(t, rec.Calls, 1)
	require.Len(t, rec.Uploads, 1)
	c := rec.Calls[0].Texture.Sample(mgl32.Vec2{0.5, 0.5})
	assert.InDelta(t, 1.0, c[2], 1e-6)
}

func TestDemoLayout(t *testing.T) {
	s := buildDemo(t, texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	cam := s.Camera()
	assert.Equal(t, float32(10), cam.FOV)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position)

	m, err := s.Mesh(WaveMeshName)
	require.NoError(t, err)
	assert.Equal(t, 289, m.Geometry.VertexCount())
	assert.Equal(t, 512, m.Geometry.TriangleCount())
	assert.Equal(t, material.WaveMaterialName, m.Material.Type())
	assert.InDelta(t, 173.0/255, m.Material.Uniforms().Color.R, 1e-6)

	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.NotEqual(t, nodes[0].ID(), nodes[1].ID())
	assert.Equal(t, WaveMeshName, nodes[1].Name())
}

func TestDrawCallMatrices(t *testing.T) {
	s := buildDemo(t, texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	rec := &Recorder{}
	require.NoError(t, s.Frame(rec, 0, 200, 100))
	require.Len(t, rec.Calls, 1)
	call := rec.Calls[0]

	// The origin lands at the centre of clip space, in front of the camera.
	clip := call.MVP().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-6)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-6)
	assert.InDelta(t, 5, clip[3], 1e-5)

	// Aspect 2 halves horizontal clip extent relative to vertical.
	assert.InDelta(t, call.Projection.At(1, 1)/2, call.Projection.At(0, 0), 1e-5)
	assert.Equal(t, 200, rec.Width)
}

func TestBuilderErrors(t *testing.T) {
	reg := material.DefaultRegistry()
	plane := geometry.DefaultPlane

	_, err := NewBuilder(reg).Mesh("a", plane, material.WaveMaterialName, material.Uniforms{}).Build()
	assert.ErrorIs(t, err, ErrNoCamera)

	_, err = NewBuilder(reg).Camera(10, mgl32.Vec3{}).BindTexture("missing", texture.FailedFuture(errors.New("x"))).Build()
	assert.ErrorIs(t, err, ErrUnknownMesh)

	_, err = NewBuilder(reg).Camera(10, mgl32.Vec3{}).
		Mesh("a", plane, material.WaveMaterialName, material.Uniforms{}).
		Mesh("a", plane, material.WaveMaterialName, material.Uniforms{}).
		Build()
	assert.ErrorIs(t, err, ErrDuplicateMesh)

	_, err = NewBuilder(reg).Camera(10, mgl32.Vec3{}).Mesh("a", plane, "nope", material.Uniforms{}).Build()
	assert.ErrorIs(t, err, material.ErrUnknownMaterial)

	_, err = NewBuilder(reg).Camera(10, mgl32.Vec3{}).Mesh("a", geometry.Plane{Width: 1, Height: 1}, material.WaveMaterialName, material.Uniforms{}).Build()
	assert.Error(t, err)

	s, err := NewBuilder(reg).Camera(10, mgl32.Vec3{0, 0, 5}).Build()
	require.NoError(t, err)
	_, err = s.Mesh("nope")
	assert.ErrorIs(t, err, ErrUnknownMesh)
}

func TestUnboundMeshDrawsWithoutTexture(t *testing.T) {
	s, err := NewBuilder(material.DefaultRegistry()).
		Camera(10, mgl32.Vec3{0, 0, 5}).
		Mesh("plain", geometry.DefaultPlane, material.WaveMaterialName, material.Uniforms{}).
		Build()
	require.NoError(t, err)

	rec := &Recorder{}
	require.NoError(t, s.Frame(rec, 0, 10, 10))
	require.Len(t, rec.Calls, 1)
	assert.Nil(t, rec.Calls[0].Texture)
	assert.Equal(t, material.TextureHandle(0), rec.Calls[0].Uniforms.Texture)
}

type failingBackend struct{ Recorder }

func (f *failingBackend) UploadTexture(image.Image) (material.TextureHandle, error) {
	return 0, errors.New("out of memory")
}

func TestUploadErrorPropagates(t *testing.T) {
	s := buildDemo(t, texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	err := s.Frame(&failingBackend{}, 0, 10, 10)
	assert.ErrorContains(t, err, "out of memory")
}

func TestClock(t *testing.T) {
	now := 100.0
	c := NewClock(func() float64 { return now })
	assert.Equal(t, float32(0), c.Elapsed())
	now = 101.5
	assert.Equal(t, float32(1.5), c.Elapsed())
	c.Reset()
	assert.Equal(t, float32(0), c.Elapsed())

	assert.Equal(t, float32(0.5), FixedStep(15, 30))
	assert.Equal(t, float32(0), FixedStep(3, 0))
}

func TestWrapAppliesToBoundImages(t *testing.T) {
	b, err := NewDemo(material.DefaultRegistry(), texture.ResolvedFuture(solid(color.RGBA{A: 255})))
	require.NoError(t, err)
	s, err := b.Wrap(texture.WrapRepeat).Build()
	require.NoError(t, err)

	rec := &Recorder{}
	require.NoError(t, s.Frame(rec, 0, 10, 10))
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, texture.WrapRepeat, rec.Calls[0].Texture.Wrap)
}
