package sketch

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type AssetId string

type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetFont  AssetKind = "font"
)

var ErrAssetTimeout = errors.New("asset preload timed out")

// AssetError reports a single font or image that failed to load.
type AssetError struct {
	Kind AssetKind
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("load %s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// ImageAsset is a decoded image in tightly packed RGBA8.
type ImageAsset struct {
	Path   string
	Width  uint32
	Height uint32
	Texels []uint8
}

type FontAsset struct {
	Path   string
	Family string
	Font   *opentype.Font
}

// AssetServer decodes and owns images and fonts. It is safe for concurrent
// loads.
type AssetServer struct {
	// Open reads asset bytes. Defaults to the local filesystem.
	Open   func(path string) (io.ReadCloser, error)
	Logger Logger

	mu     sync.RWMutex
	images map[AssetId]*ImageAsset
	fonts  map[AssetId]*FontAsset
	byPath map[string]AssetId
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		Open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		Logger: NewNopLogger(),
		images: make(map[AssetId]*ImageAsset),
		fonts:  make(map[AssetId]*FontAsset),
		byPath: make(map[string]AssetId),
	}
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer()
	if l, ok := app.Logger().(*DefaultLogger); ok {
		server.Logger = l.Named("assets")
	}
	cmd.AddResources(server)
}

// LoadImage decodes PNG, JPEG, GIF, WebP, BMP or TIFF. Loading the same path
// twice returns the first id.
func (server *AssetServer) LoadImage(path string) (AssetId, error) {
	if id, ok := server.lookup(path); ok {
		return id, nil
	}

	file, err := server.Open(path)
	if err != nil {
		return "", &AssetError{Kind: AssetImage, Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", &AssetError{Kind: AssetImage, Path: path, Err: err}
	}

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok || rgbaImg.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgbaImg = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, draw.Src)
	}

	asset := &ImageAsset{
		Path:   path,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Texels: rgbaImg.Pix,
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if id, ok := server.byPath[path]; ok {
		return id, nil
	}
	id := makeAssetId()
	server.images[id] = asset
	server.byPath[path] = id
	server.Logger.Debugf("Loaded image %s (%dx%d)", path, asset.Width, asset.Height)
	return id, nil
}

// LoadFont parses a TrueType or OpenType font.
func (server *AssetServer) LoadFont(path string) (AssetId, error) {
	if id, ok := server.lookup(path); ok {
		return id, nil
	}

	file, err := server.Open(path)
	if err != nil {
		return "", &AssetError{Kind: AssetFont, Path: path, Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", &AssetError{Kind: AssetFont, Path: path, Err: err}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return "", &AssetError{Kind: AssetFont, Path: path, Err: err}
	}
	family, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		family = path
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if id, ok := server.byPath[path]; ok {
		return id, nil
	}
	id := makeAssetId()
	server.fonts[id] = &FontAsset{Path: path, Family: family, Font: f}
	server.byPath[path] = id
	server.Logger.Debugf("Loaded font %s (%s)", path, family)
	return id, nil
}

func (server *AssetServer) Image(id AssetId) (*ImageAsset, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	img, ok := server.images[id]
	return img, ok
}

func (server *AssetServer) Font(id AssetId) (*FontAsset, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	f, ok := server.fonts[id]
	return f, ok
}

func (server *AssetServer) lookup(path string) (AssetId, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	id, ok := server.byPath[path]
	return id, ok
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
