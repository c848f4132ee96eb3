package scene

import (
	"image"

	"github.com/richinsley/gowave/material"
)

// Recorder is a Backend that keeps what it was asked to do.
type Recorder struct {
	Width, Height int
	Uploads       []image.Image
	Calls         []DrawCall
	Frames        int
}

func (r *Recorder) Begin(width, height int) {
	r.Width, r.Height = width, height
	r.Calls = r.Calls[:0]
}

// UploadTexture returns 1-based handles in upload order.
func (r *Recorder) UploadTexture(img image.Image) (material.TextureHandle, error) {
	r.Uploads = append(r.Uploads, img)
	return material.TextureHandle(len(r.Uploads)), nil
}

func (r *Recorder) Draw(call DrawCall) error {
	r.Calls = append(r.Calls, call)
	return nil
}

func (r *Recorder) End() { r.Frames++ }

// DrewTexture reports whether the last frame has a draw call with h bound.
func (r *Recorder) DrewTexture(h material.TextureHandle) bool {
	for _, c := range r.Calls {
		if c.Uniforms.Texture == h {
			return true
		}
	}
	return false
}
