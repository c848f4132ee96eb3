// Package encoder streams raw RGBA frames into an ffmpeg process.
package encoder

import (
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"strings"

	"github.com/richinsley/gowave/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame is one rendered frame, bottom row first as read back from GL.
type Frame struct {
	Pixels []byte
	PTS    int64
}

const queueDepth = 3

// candidateEncoders lists encoders for codec in order of preference. The
// hardware encoders of goos come first when hw is set.
func candidateEncoders(codec string, hw bool, goos string) []string {
	software := "libx264"
	if codec == "hevc" {
		software = "libx265"
	}
	if !hw {
		return []string{software}
	}
	var names []string
	switch goos {
	case "linux":
		names = []string{codec + "_nvenc"}
	case "darwin":
		names = []string{codec + "_videotoolbox"}
	case "windows":
		names = []string{codec + "_nvenc", codec + "_amf", codec + "_qsv"}
	}
	return append(names, software)
}

// listEncoders returns the output of `ffmpeg -encoders` for the binary at path.
func listEncoders(path string) (string, error) {
	out, err := exec.Command(path, "-hide_banner", "-encoders").Output()
	if err != nil {
		return "", fmt.Errorf("failed to list ffmpeg encoders: %w", err)
	}
	return string(out), nil
}

// parseEncoders collects the encoder names from an `ffmpeg -encoders` listing.
// Lines look like " V....D libx264  libx264 H.264 ...".
func parseEncoders(listing string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] == "=" || len(fields[0]) != 6 || strings.Trim(fields[0], "VASFXBD.") != "" {
			continue
		}
		names[fields[1]] = true
	}
	return names
}

// pickEncoder returns the first candidate ffmpeg reports, or the last
// candidate (the software encoder) when none are present.
func pickEncoder(candidates []string, available map[string]bool) string {
	for _, name := range candidates {
		if available[name] {
			return name
		}
	}
	return candidates[len(candidates)-1]
}

// VideoEncoder picks the encoder name for the options on this platform.
// Hardware encoders are only chosen when the ffmpeg binary lists them.
func VideoEncoder(opts *options.ShaderOptions) string {
	codec := strings.ToLower(*opts.Codec)
	candidates := candidateEncoders(codec, *opts.HWAccel, runtime.GOOS)
	name := candidates[len(candidates)-1]
	if len(candidates) > 1 {
		path := *opts.FFMPEGPath
		if path == "" {
			path = "ffmpeg"
		}
		listing, err := listEncoders(path)
		if err != nil {
			log.Printf("Warning: %v, using %s", err, name)
		} else {
			name = pickEncoder(candidates, parseEncoders(listing))
		}
	}
	log.Printf("Selected video encoder: %s", name)
	return name
}

// Args builds the ffmpeg input and output arguments for width x height RGBA
// frames at fps.
func Args(opts *options.ShaderOptions, encoderName string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"framerate": *opts.FPS,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     encoderName,
		"pix_fmt": "yuv420p",
		"vf":      "vflip",
		"b:v":     "25M",
	}
	out := opts.OutputPath()
	if strings.ToLower(*opts.Codec) == "hevc" && strings.HasSuffix(out, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Encoder runs ffmpeg on its own goroutine and feeds it frames from a
// channel.
type Encoder struct {
	frames    chan *Frame
	done      chan error
	frameSize int
}

// Start launches ffmpeg for opts. Frames sent to Frames are written in order;
// Close ends the stream and waits for ffmpeg to exit.
func Start(opts *options.ShaderOptions) (*Encoder, error) {
	out := opts.OutputPath()
	if out == "" {
		return nil, fmt.Errorf("no output file")
	}
	e := &Encoder{
		frames:    make(chan *Frame, queueDepth),
		done:      make(chan error, 1),
		frameSize: *opts.Width * *opts.Height * 4,
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(opts, VideoEncoder(opts))
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(out, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if *opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()
	go e.run(pipeWriter, errc)
	return e, nil
}

func (e *Encoder) run(w *io.PipeWriter, errc <-chan error) {
	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if len(frame.Pixels) != e.frameSize {
			writeErr = fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.frameSize)
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", frame.PTS, err)
			writeErr = fmt.Errorf("failed to write frame %d: %w", frame.PTS, err)
		}
	}
	w.Close()
	runErr := <-errc
	if runErr != nil {
		e.done <- fmt.Errorf("ffmpeg failed: %w", runErr)
		return
	}
	e.done <- writeErr
}

// Frames is the producer side of the encoder.
func (e *Encoder) Frames() chan<- *Frame { return e.frames }

// Close signals the end of the stream and returns the encoder result.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}
