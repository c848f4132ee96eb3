package softrender

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/scene"
	"github.com/richinsley/gowave/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func demo(t *testing.T, f *texture.Future) *scene.Scene {
	t.Helper()
	b, err := scene.NewDemo(material.DefaultRegistry(), f)
	require.NoError(t, err)
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestPendingDrawsNothing(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := texture.Load(context.Background(), texture.LoaderFunc(func(context.Context) (image.Image, error) {
		<-release
		return nil, errors.New("cancelled")
	}))
	s := demo(t, f)

	r := New()
	require.NoError(t, s.Frame(r, 0, 64, 64))
	assert.Equal(t, 0, r.Drawn())
	for _, p := range r.Image().Pix {
		require.Equal(t, uint8(0), p)
	}
}

func TestResolvedCoversCentre(t *testing.T) {
	tex := color.RGBA{200, 100, 50, 255}
	s := demo(t, texture.ResolvedFuture(solid(tex)))

	r := New()
	require.NoError(t, s.Frame(r, 0.7, 100, 100))
	img := r.Image()
	assert.Greater(t, r.Drawn(), 0)

	assert.Equal(t, tex, img.RGBAAt(50, 50))
	// The plane is narrower than the view, so the corners stay clear.
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(99, 99))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 50))
}

func TestGreenFromUnshiftedUV(t *testing.T) {
	// Green varies with u; red and blue are zero everywhere.
	img := image.NewRGBA(image.Rect(0, 0, 256, 1))
	for x := 0; x < 256; x++ {
		img.SetRGBA(x, 0, color.RGBA{0, uint8(x), 0, 255})
	}
	s := demo(t, texture.ResolvedFuture(img))

	r := New()
	require.NoError(t, s.Frame(r, 0, 100, 100))
	out := r.Image()

	left := out.RGBAAt(40, 50)
	right := out.RGBAAt(60, 50)
	assert.Equal(t, uint8(0), left.R)
	assert.Equal(t, uint8(0), left.B)
	assert.Less(t, left.G, right.G)
	assert.InDelta(t, 128, int(out.RGBAAt(50, 50).G), 8)
}

func TestMatchesCPUShade(t *testing.T) {
	tex := texture.NewImage(solid(color.RGBA{10, 20, 30, 255}))
	want := material.Shade(tex, mgl32.Vec2{0.5, 0.5}, 0.1)
	s := demo(t, texture.ResolvedFuture(tex.RGBA()))

	r := New()
	require.NoError(t, s.Frame(r, 0, 32, 32))
	got := r.Image().RGBAAt(16, 16)
	assert.Equal(t, toByte(want[0]), got.R)
	assert.Equal(t, toByte(want[1]), got.G)
	assert.Equal(t, toByte(want[2]), got.B)
}

func TestDeterministicFrames(t *testing.T) {
	s := demo(t, texture.ResolvedFuture(solid(color.RGBA{255, 255, 255, 255})))
	a, b := New(), New()
	require.NoError(t, s.Frame(a, 1.5, 48, 48))
	require.NoError(t, s.Frame(b, 1.5, 48, 48))
	assert.Equal(t, a.Image().Pix, b.Image().Pix)
}

func TestBackground(t *testing.T) {
	s := demo(t, texture.FailedFuture(errors.New("offline")))
	r := New()
	r.Background = color.RGBA{1, 2, 3, 255}
	require.NoError(t, s.Frame(r, 0, 8, 8))
	assert.Equal(t, r.Background, r.Image().RGBAAt(4, 4))
}

type plainMaterial struct{ u material.Uniforms }

func (p *plainMaterial) Type() string                        { return "plain" }
func (p *plainMaterial) Uniforms() *material.Uniforms        { return &p.u }
func (p *plainMaterial) SetTime(t float32)                   { p.u.Time = t }
func (p *plainMaterial) SetTexture(h material.TextureHandle) { p.u.Texture = h }
func (p *plainMaterial) Sources() (string, string, error)    { return "", "", nil }

func TestRejectsMaterialWithoutCPUShader(t *testing.T) {
	r := New()
	r.Begin(4, 4)
	err := r.Draw(scene.DrawCall{Material: &plainMaterial{}})
	assert.ErrorContains(t, err, "no CPU shader")
}

func TestSavePNG(t *testing.T) {
	r := New()
	assert.Error(t, r.SavePNG(filepath.Join(t.TempDir(), "none.png")))

	s := demo(t, texture.ResolvedFuture(solid(color.RGBA{255, 0, 0, 255})))
	require.NoError(t, s.Frame(r, 0, 16, 16))
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, r.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}
