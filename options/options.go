package options

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	ModeWindow = "window"
	ModeRecord = "record"
	ModePNG    = "png"
)

// DefaultImage is the picture mapped onto the wave when none is given.
const DefaultImage = "https://sm.ign.com/t/ign_br/screenshot/default/bojack-1_twg8.1200.jpg"

// ImageEnv overrides DefaultImage when -image is not set.
const ImageEnv = "GOWAVE_IMAGE"

type ShaderOptions struct {
	Help       *bool
	Mode       *string
	Image      *string
	Proxy      *string
	CacheDir   *string
	NoCache    *bool
	Fallback   *string // image bound when the main image fails to load
	Width      *int
	Height     *int
	FPS        *int
	Duration   *float64
	Time       *float64 // clock value for png mode
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	HWAccel    *bool
	Wrap       *string
	SPIRVOut   *string
	GLES       *bool
	Debug      *bool
}

// Register defines the flags on fs and returns the options they fill.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", ModeWindow, "Run mode: window, record or png"),
		Image:      fs.String("image", "", "Image URL or file path (from "+ImageEnv+" env var if not set)"),
		Proxy:      fs.String("proxy", "", "Prefix prepended to the image URL, e.g. a CORS proxy"),
		CacheDir:   fs.String("cache", "", "Directory for downloaded images (default: user cache dir)"),
		NoCache:    fs.Bool("nocache", false, "Do not cache downloaded images"),
		Fallback:   fs.String("fallback", "", "Image used when the main image fails to load"),
		Width:      fs.Int("width", 1280, "Width of the output"),
		Height:     fs.Int("height", 720, "Height of the output"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		Time:       fs.Float64("time", 0, "Animation time in seconds for png mode"),
		OutputFile: fs.String("output", "", "Output file (default output.mp4 or frame.png)"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec: h264 or hevc"),
		HWAccel:    fs.Bool("hwaccel", false, "Prefer the platform hardware encoder"),
		Wrap:       fs.String("wrap", "clamp", "Texture wrap mode: clamp or repeat"),
		SPIRVOut:   fs.String("spirv", "", "Write the material as SPIR-V to this file and exit"),
		GLES:       fs.Bool("gles", false, "Translate shaders to ESSL instead of GLSL 4.10"),
		Debug:      fs.Bool("debug", false, "Verbose logging"),
	}
}

// Parse parses args into a fresh option set.
func Parse(args []string) (*ShaderOptions, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("gowave", flag.ContinueOnError)
	opts := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

// ImageSource returns -image, then $GOWAVE_IMAGE, then DefaultImage.
func (o *ShaderOptions) ImageSource() string {
	if *o.Image != "" {
		return *o.Image
	}
	if env := os.Getenv(ImageEnv); env != "" {
		return env
	}
	return DefaultImage
}

// OutputPath returns -output or the default file name for the mode.
func (o *ShaderOptions) OutputPath() string {
	if *o.OutputFile != "" {
		return *o.OutputFile
	}
	if *o.Mode == ModePNG {
		return "frame.png"
	}
	return "output.mp4"
}

func (o *ShaderOptions) Validate() error {
	switch *o.Mode {
	case ModeWindow, ModeRecord, ModePNG:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid output size %dx%d", *o.Width, *o.Height)
	}
	if *o.Mode == ModeRecord {
		if *o.FPS <= 0 {
			return fmt.Errorf("fps must be positive, got %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("duration must be positive, got %g", *o.Duration)
		}
	}
	switch strings.ToLower(*o.Codec) {
	case "h264", "hevc":
	default:
		return fmt.Errorf("unknown codec %q", *o.Codec)
	}
	switch *o.Wrap {
	case "clamp", "repeat":
	default:
		return fmt.Errorf("unknown wrap mode %q", *o.Wrap)
	}
	return nil
}
