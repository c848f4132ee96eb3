package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader produces an image. Implementations decide where it comes from.
type Loader interface {
	Load(ctx context.Context) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (image.Image, error)

func (fn LoaderFunc) Load(ctx context.Context) (image.Image, error) { return fn(ctx) }

// NewLoader picks an HTTPLoader for http(s) URLs and a FileLoader otherwise.
func NewLoader(src, proxyPrefix, cacheDir string) Loader {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return &HTTPLoader{URL: src, ProxyPrefix: proxyPrefix, CacheDir: cacheDir}
	}
	return &FileLoader{Path: src}
}

// FileLoader decodes an image from disk.
type FileLoader struct {
	Path string
}

func (l *FileLoader) Load(ctx context.Context) (image.Image, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", l.Path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", l.Path, err)
	}
	return img, nil
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "gowave")
	return t.Transport.RoundTrip(req)
}

var httpClient = &http.Client{
	Transport: &headerTransport{Transport: http.DefaultTransport},
}

// HTTPLoader fetches an image with a single GET of ProxyPrefix+URL. When
// CacheDir is set the downloaded bytes are kept there and reused.
type HTTPLoader struct {
	URL         string
	ProxyPrefix string
	Client      *http.Client
	CacheDir    string
}

func (l *HTTPLoader) requestURL() string {
	return l.ProxyPrefix + l.URL
}

func (l *HTTPLoader) cachePath() string {
	if l.CacheDir == "" {
		return ""
	}
	name := l.URL
	if u, err := url.Parse(l.URL); err == nil && u.Path != "" {
		name = u.Path
	}
	return filepath.Join(l.CacheDir, filepath.Base(name))
}

func (l *HTTPLoader) Load(ctx context.Context) (image.Image, error) {
	cachePath := l.cachePath()
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			img, err := Decode(data)
			if err == nil {
				return img, nil
			}
			log.Printf("Warning: could not decode cached image %s: %v. Redownloading...", cachePath, err)
		}
	}

	mediaURL := l.requestURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", mediaURL, err)
	}
	client := l.Client
	if client == nil {
		client = httpClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load image %s, status code: %d", mediaURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data from %s: %w", mediaURL, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode downloaded image from %s: %w", mediaURL, err)
	}

	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
			log.Printf("Warning: failed to create cache directory %s: %v", filepath.Dir(cachePath), err)
		} else if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Printf("Warning: failed to save image to cache at %s: %v", cachePath, err)
		}
	}
	return img, nil
}

// Decode decodes any registered image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// ToRGBA converts img to RGBA, reusing it when it already is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DefaultCacheDir returns the per-user cache directory for downloaded images.
func DefaultCacheDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("HOME environment variable not set")
		}
		base = filepath.Join(home, "Library", "Caches")
	default:
		base = os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home := os.Getenv("HOME")
			if home == "" {
				return "", fmt.Errorf("HOME environment variable not set")
			}
			base = filepath.Join(home, ".cache")
		}
	}
	return filepath.Join(base, "gowave", "media"), nil
}
