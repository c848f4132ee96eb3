package renderer

import (
	"fmt"
	"image"
	"log"

	"github.com/richinsley/gowave/encoder"
	"github.com/richinsley/gowave/options"
	"github.com/richinsley/gowave/scene"
)

// Run drives s interactively until the window closes.
func (r *Renderer) Run(s *scene.Scene) error {
	clock := scene.NewClock(r.context.Time)
	var frameCount int64

	for !r.context.ShouldClose() {
		fbWidth, fbHeight := r.context.GetFramebufferSize()
		if err := s.Frame(r, clock.Elapsed(), fbWidth, fbHeight); err != nil {
			return fmt.Errorf("frame %d: %w", frameCount, err)
		}
		r.present()
		r.context.EndFrame()
		frameCount++
	}
	log.Printf("Rendered %d frames", frameCount)
	return nil
}

// Snapshot returns the last rendered frame.
func (r *Renderer) Snapshot() *image.RGBA {
	return r.offscreen.Snapshot()
}

// RunOffscreen renders duration*fps frames at a fixed timestep and streams
// them to ffmpeg. The render loop is the producer and the encoder goroutine
// the consumer.
func (r *Renderer) RunOffscreen(s *scene.Scene, opts *options.ShaderOptions) error {
	log.Println("Starting in record mode...")
	enc, err := encoder.Start(opts)
	if err != nil {
		return err
	}

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	var renderErr error
	for i := 0; i < totalFrames; i++ {
		t := scene.FixedStep(i, *opts.FPS)
		if err := s.Frame(r, t, r.width, r.height); err != nil {
			renderErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		enc.Frames() <- &encoder.Frame{Pixels: r.offscreen.readPixels(), PTS: int64(i)}
		if *opts.Debug && i%*opts.FPS == 0 {
			log.Printf("Rendered frame %d/%d", i, totalFrames)
		}
	}

	encErr := enc.Close()
	if renderErr != nil {
		return renderErr
	}
	return encErr
}
