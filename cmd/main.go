package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/gowave/glfwcontext"
	"github.com/richinsley/gowave/material"
	"github.com/richinsley/gowave/options"
	"github.com/richinsley/gowave/renderer"
	"github.com/richinsley/gowave/scene"
	"github.com/richinsley/gowave/shader"
	"github.com/richinsley/gowave/softrender"
	"github.com/richinsley/gowave/texture"
)

func init() {
	runtime.LockOSThread()
}

func imageLoader(opts *options.ShaderOptions, src string) texture.Loader {
	cacheDir := *opts.CacheDir
	switch {
	case *opts.NoCache:
		cacheDir = ""
	case cacheDir == "":
		dir, err := texture.DefaultCacheDir()
		if err != nil {
			log.Printf("Warning: image cache disabled: %v", err)
		}
		cacheDir = dir
	}
	return texture.NewLoader(src, *opts.Proxy, cacheDir)
}

func buildScene(ctx context.Context, opts *options.ShaderOptions) (*scene.Scene, *texture.Future, error) {
	src := opts.ImageSource()
	log.Printf("Loading image: %s", src)
	future := texture.Load(ctx, imageLoader(opts, src))

	b, err := scene.NewDemo(material.DefaultRegistry(), future)
	if err != nil {
		return nil, nil, err
	}
	b.Wrap(texture.Wrap(*opts.Wrap))
	if *opts.Fallback != "" {
		img, err := imageLoader(opts, *opts.Fallback).Load(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load fallback image: %w", err)
		}
		b.Fallback(img)
	}
	s, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return s, future, nil
}

// waitForTexture blocks offscreen modes until the image settles so the first
// frames are not empty.
func waitForTexture(ctx context.Context, f *texture.Future) {
	start := time.Now()
	if _, err := f.Wait(ctx); err != nil {
		log.Printf("Warning: texture unavailable: %v", err)
		return
	}
	log.Printf("Texture loaded in %v", time.Since(start).Round(time.Millisecond))
}

func writeSPIRV(path string) error {
	code, err := shader.CompileSPIRV()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, code, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %d bytes of SPIR-V to %s", len(code), path)
	return nil
}

func runPNG(ctx context.Context, s *scene.Scene, f *texture.Future, opts *options.ShaderOptions) error {
	waitForTexture(ctx, f)
	r := softrender.New()
	if err := s.Frame(r, float32(*opts.Time), *opts.Width, *opts.Height); err != nil {
		return err
	}
	out := opts.OutputPath()
	if err := r.SavePNG(out); err != nil {
		return err
	}
	log.Printf("Wrote %s (%d pixels shaded)", out, r.Drawn())
	return nil
}

func saveSnapshot(img *image.RGBA) {
	name := fmt.Sprintf("gowave-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		log.Printf("Error saving snapshot: %v", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Printf("Error encoding snapshot: %v", err)
		return
	}
	log.Printf("Saved snapshot %s", name)
}

func runGL(ctx context.Context, s *scene.Scene, f *texture.Future, opts *options.ShaderOptions) error {
	record := *opts.Mode == options.ModeRecord
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	glctx, err := glfwcontext.New(opts, !record)
	if err != nil {
		return err
	}
	defer glctx.Shutdown()

	r, err := renderer.NewRenderer(glctx, *opts.Width, *opts.Height, record, texture.Wrap(*opts.Wrap))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	if record {
		waitForTexture(ctx, f)
		if err := r.RunOffscreen(s, opts); err != nil {
			return fmt.Errorf("offscreen rendering failed: %w", err)
		}
		log.Printf("Successfully rendered to %s", opts.OutputPath())
		return nil
	}

	glctx.RegisterKeyCallback(glfw.KeyS, func() { saveSnapshot(r.Snapshot()) })
	log.Println("Starting interactive render loop...")
	return r.Run(s)
}

func main() {
	opts, fs, err := options.Parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if *opts.Help {
		fmt.Println("gowave: animated wave shader viewer/recorder")
		fs.PrintDefaults()
		return
	}
	if *opts.SPIRVOut != "" {
		if err := writeSPIRV(*opts.SPIRVOut); err != nil {
			log.Fatalf("SPIR-V export failed: %v", err)
		}
		return
	}

	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, future, err := buildScene(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}

	switch *opts.Mode {
	case options.ModePNG:
		err = runPNG(ctx, s, future, opts)
	default:
		err = runGL(ctx, s, future, opts)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
