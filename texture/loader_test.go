package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHTTPLoaderProxyPrefix(t *testing.T) {
	data := testPNG(t)
	seen := make(chan [2]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- [2]string{r.RequestURI, r.Header.Get("User-Agent")}
		w.Write(data)
	}))
	defer srv.Close()

	l := &HTTPLoader{URL: "https://example.com/img/photo.png", ProxyPrefix: srv.URL + "/proxy/"}
	img, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	got := <-seen
	assert.Equal(t, "/proxy/https://example.com/img/photo.png", got[0])
	assert.Equal(t, "gowave", got[1])
}

func TestHTTPLoaderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	l := &HTTPLoader{URL: srv.URL + "/missing.png", Client: srv.Client()}
	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 404")
}

func TestHTTPLoaderDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	l := &HTTPLoader{URL: srv.URL + "/bad.png"}
	_, err := l.Load(context.Background())
	assert.Error(t, err)
}

func TestHTTPLoaderCache(t *testing.T) {
	data := testPNG(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	dir := t.TempDir()
	l := &HTTPLoader{URL: srv.URL + "/media/a.png", CacheDir: dir}

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.png"))

	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPLoaderCancelled(t *testing.T) {
	data := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &HTTPLoader{URL: srv.URL + "/a.png"}
	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.bmp")

	img := image.NewRGBA(image.Rect(0, 0, 5, 4))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	got, err := (&FileLoader{Path: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, got.Bounds().Dx())

	_, err = (&FileLoader{Path: filepath.Join(dir, "missing.png")}).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLoader(t *testing.T) {
	l := NewLoader("https://example.com/a.jpg", "https://proxy/", "/tmp/c")
	h, ok := l.(*HTTPLoader)
	require.True(t, ok)
	assert.Equal(t, "https://proxy/https://example.com/a.jpg", h.requestURL())

	_, ok = NewLoader("textures/a.png", "", "").(*FileLoader)
	assert.True(t, ok)
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(2, 3, 6, 5))
	src.Set(2, 3, color.RGBA{G: 255, A: 255})
	got := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 4, 2), got.Bounds())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, got.RGBAAt(0, 0))
}
