package encoder

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/richinsley/gowave/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *options.ShaderOptions {
	t.Helper()
	opts, _, err := options.Parse(args)
	require.NoError(t, err)
	return opts
}

func TestCandidateEncoders(t *testing.T) {
	assert.Equal(t, []string{"libx264"}, candidateEncoders("h264", false, "linux"))
	assert.Equal(t, []string{"libx265"}, candidateEncoders("hevc", false, "darwin"))
	assert.Equal(t, []string{"h264_nvenc", "libx264"}, candidateEncoders("h264", true, "linux"))
	assert.Equal(t, []string{"hevc_videotoolbox", "libx265"}, candidateEncoders("hevc", true, "darwin"))
	assert.Equal(t, []string{"h264_nvenc", "h264_amf", "h264_qsv", "libx264"}, candidateEncoders("h264", true, "windows"))
	assert.Equal(t, []string{"libx264"}, candidateEncoders("h264", true, "plan9"))
}

func TestArgs(t *testing.T) {
	opts := parse(t, "-mode", "record", "-width", "640", "-height", "360", "-fps", "30")
	in, out := Args(opts, "libx264")

	assert.Equal(t, "rawvideo", in["format"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "640x360", in["s"])
	assert.Equal(t, 30, in["framerate"])

	assert.Equal(t, "libx264", out["c:v"])
	assert.Equal(t, "vflip", out["vf"])
	assert.NotContains(t, out, "tag:v")
}

func TestArgsHEVCTag(t *testing.T) {
	opts := parse(t, "-mode", "record", "-codec", "hevc")
	_, out := Args(opts, "libx265")
	assert.Equal(t, "hvc1", out["tag:v"])

	opts = parse(t, "-mode", "record", "-codec", "hevc", "-output", "clip.mkv")
	_, out = Args(opts, "libx265")
	assert.NotContains(t, out, "tag:v")
}

func TestVideoEncoderSoftwareDefault(t *testing.T) {
	assert.Equal(t, "libx264", VideoEncoder(parse(t)))
	assert.Equal(t, "libx265", VideoEncoder(parse(t, "-codec", "HEVC")))
}

const encoderListing = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoders(t *testing.T) {
	names := parseEncoders(encoderListing)
	assert.True(t, names["libx264"])
	assert.True(t, names["h264_nvenc"])
	assert.True(t, names["aac"])
	assert.False(t, names["="])
	assert.False(t, names["libx265"])
}

func TestPickEncoder(t *testing.T) {
	available := parseEncoders(encoderListing)
	assert.Equal(t, "h264_nvenc", pickEncoder([]string{"h264_nvenc", "libx264"}, available))
	assert.Equal(t, "libx264", pickEncoder([]string{"h264_amf", "h264_qsv", "libx264"}, available))
	assert.Equal(t, "libx265", pickEncoder([]string{"hevc_nvenc", "libx265"}, available))
}

// stubFFMPEG writes an executable shell script standing in for ffmpeg.
func stubFFMPEG(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestVideoEncoderUsesListedHardware(t *testing.T) {
	candidates := candidateEncoders("h264", true, runtime.GOOS)
	if len(candidates) == 1 {
		t.Skip("no hardware encoders on " + runtime.GOOS)
	}
	listed := stubFFMPEG(t, "echo ' V....D "+candidates[0]+" hw encoder'\necho ' V....D libx264 sw encoder'")
	assert.Equal(t, candidates[0], VideoEncoder(parse(t, "-hwaccel", "-ffmpeg", listed)))

	softOnly := stubFFMPEG(t, "echo ' V....D libx264 sw encoder'")
	assert.Equal(t, "libx264", VideoEncoder(parse(t, "-hwaccel", "-ffmpeg", softOnly)))

	failing := stubFFMPEG(t, "exit 1")
	assert.Equal(t, "libx264", VideoEncoder(parse(t, "-hwaccel", "-ffmpeg", failing)))
}

func recordOptions(t *testing.T, ffmpegPath string) *options.ShaderOptions {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out.mp4")
	return parse(t, "-mode", "record", "-width", "4", "-height", "2",
		"-output", out, "-ffmpeg", ffmpegPath)
}

func TestEncoderStreamsFrames(t *testing.T) {
	opts := recordOptions(t, stubFFMPEG(t, "cat > /dev/null"))
	enc, err := Start(opts)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		enc.Frames() <- &Frame{Pixels: make([]byte, 4*2*4), PTS: int64(i)}
	}
	assert.NoError(t, enc.Close())
}

func TestEncoderFrameSizeMismatch(t *testing.T) {
	opts := recordOptions(t, stubFFMPEG(t, "cat > /dev/null"))
	enc, err := Start(opts)
	require.NoError(t, err)
	enc.Frames() <- &Frame{Pixels: make([]byte, 4*2*4)}
	enc.Frames() <- &Frame{Pixels: make([]byte, 7), PTS: 1}
	err = enc.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 1 has 7 bytes, want 32")
}

func TestEncoderReportsFFMPEGExit(t *testing.T) {
	opts := recordOptions(t, stubFFMPEG(t, "exit 3"))
	enc, err := Start(opts)
	require.NoError(t, err)
	enc.Frames() <- &Frame{Pixels: make([]byte, 4*2*4)}
	err = enc.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg failed")
}

