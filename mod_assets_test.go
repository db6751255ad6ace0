package sketch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func writeTestFont(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "goregular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))
	return path
}

func TestAssetServer_LoadImage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "a.png", 4, 3)

	server := NewAssetServer()
	id, err := server.LoadImage(path)
	require.NoError(t, err)

	img, ok := server.Image(id)
	require.True(t, ok)
	assert.Equal(t, uint32(4), img.Width)
	assert.Equal(t, uint32(3), img.Height)
	assert.Len(t, img.Texels, 4*3*4)
	// pixel (2, 1) is row 1, column 2
	assert.Equal(t, []uint8{2, 1, 200, 255}, img.Texels[(1*4+2)*4:(1*4+2)*4+4])

	again, err := server.LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestAssetServer_LoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	server := NewAssetServer()

	_, err := server.LoadImage(filepath.Join(dir, "missing.png"))
	var assetErr *AssetError
	require.True(t, errors.As(err, &assetErr))
	assert.Equal(t, AssetImage, assetErr.Kind)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = server.LoadImage(garbage)
	assert.ErrorAs(t, err, &assetErr)
}

func TestAssetServer_LoadFont(t *testing.T) {
	path := writeTestFont(t, t.TempDir())
	server := NewAssetServer()

	id, err := server.LoadFont(path)
	require.NoError(t, err)
	f, ok := server.Font(id)
	require.True(t, ok)
	assert.Equal(t, "Go", f.Family)
	assert.NotNil(t, f.Font)

	_, ok = server.Image(id)
	assert.False(t, ok)
}

func TestAssetServer_Preload(t *testing.T) {
	dir := t.TempDir()
	fontPath := writeTestFont(t, dir)
	var images []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		images = append(images, writeTestPNG(t, dir, name, 8, 8))
	}

	server := NewAssetServer()
	res, err := server.Preload(context.Background(), PreloadRequest{
		Fonts:   []string{fontPath},
		Images:  images,
		Timeout: 5 * time.Second,
		Workers: 2,
	})
	require.NoError(t, err)
	assert.Len(t, res.Fonts, 1)
	assert.Len(t, res.Images, len(images))
	for _, p := range images {
		_, ok := server.Image(res.Images[p])
		assert.True(t, ok, p)
	}
}

func TestAssetServer_PreloadEmpty(t *testing.T) {
	res, err := NewAssetServer().Preload(context.Background(), PreloadRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.Empty(t, res.Fonts)
}

func TestAssetServer_PreloadFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeTestPNG(t, dir, "good.png", 2, 2)

	_, err := NewAssetServer().Preload(context.Background(), PreloadRequest{
		Images:  []string{good, filepath.Join(dir, "missing.png")},
		Timeout: 5 * time.Second,
	})
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
	assert.NotErrorIs(t, err, ErrAssetTimeout)
}

func TestAssetServer_PreloadTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	server := NewAssetServer()
	server.Open = func(path string) (io.ReadCloser, error) {
		<-block
		return nil, errors.New("unblocked")
	}

	start := time.Now()
	_, err := server.Preload(context.Background(), PreloadRequest{
		Fonts:   []string{"slow.ttf"},
		Images:  []string{"slow.png"},
		Timeout: 50 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrAssetTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}
