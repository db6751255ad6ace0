package sketch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageImage is one image on the page together with its box, captured once
// when the layout is loaded.
type PageImage struct {
	Src string `json:"src"`
	Rect
	// Background marks CSS background images; they preload like <img> tags.
	Background bool `json:"background,omitempty"`
}

// PageLayout describes the page the planes track.
type PageLayout struct {
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	ContentHeight float32     `json:"content_height"`
	Fonts         []string    `json:"fonts,omitempty"`
	Images        []PageImage `json:"images"`
	// Demo is an optional free-standing spinning mesh; only its src, width
	// and height are used.
	Demo *PageImage `json:"demo,omitempty"`

	dir string
}

func LoadPageLayout(filename string) (*PageLayout, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var layout PageLayout
	if err := json.Unmarshal(bytes, &layout); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", filename, err)
	}
	layout.dir = filepath.Dir(filename)

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", filename, err)
	}
	return &layout, nil
}

func (l *PageLayout) Validate() error {
	var errs []error
	if l.Width <= 0 || l.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport size %dx%d must be positive", l.Width, l.Height))
	}
	for i, img := range l.Images {
		if img.Src == "" {
			errs = append(errs, fmt.Errorf("image %d: missing src", i))
		}
		if img.Width <= 0 || img.Height <= 0 {
			errs = append(errs, fmt.Errorf("image %d (%s): size %gx%g must be positive", i, img.Src, img.Width, img.Height))
		}
	}
	if l.Demo != nil {
		if l.Demo.Src == "" {
			errs = append(errs, errors.New("demo: missing src"))
		}
		if l.Demo.Width <= 0 || l.Demo.Height <= 0 {
			errs = append(errs, fmt.Errorf("demo (%s): size %gx%g must be positive", l.Demo.Src, l.Demo.Width, l.Demo.Height))
		}
	}
	return errors.Join(errs...)
}

// Resolve turns a layout-relative path into one usable by the AssetServer.
func (l *PageLayout) Resolve(path string) string {
	if filepath.IsAbs(path) || l.dir == "" {
		return path
	}
	return filepath.Join(l.dir, path)
}

func (l *PageLayout) PreloadRequest(timeout time.Duration) PreloadRequest {
	req := PreloadRequest{Timeout: timeout}
	for _, f := range l.Fonts {
		req.Fonts = append(req.Fonts, l.Resolve(f))
	}
	images := l.Images
	if l.Demo != nil {
		images = append(images[:len(images):len(images)], *l.Demo)
	}
	seen := make(map[string]bool)
	for _, img := range images {
		p := l.Resolve(img.Src)
		if !seen[p] {
			seen[p] = true
			req.Images = append(req.Images, p)
		}
	}
	return req
}

// SpawnDemo adds the layout's demo mesh to store. It does nothing when the
// layout has no demo.
func SpawnDemo(store *PlaneStore, demo *DemoMesh, layout *PageLayout, loaded *PreloadResult) (PlaneId, error) {
	if layout.Demo == nil {
		return "", nil
	}
	path := layout.Resolve(layout.Demo.Src)
	asset, ok := loaded.Images[path]
	if !ok {
		return "", &AssetError{Kind: AssetImage, Path: path, Err: errors.New("not preloaded")}
	}
	return demo.Spawn(store, asset), nil
}

// SpawnPlanes adds one plane per layout image, in layout order. On error the
// planes added so far are removed again and the store is left as it was.
func SpawnPlanes(store *PlaneStore, layout *PageLayout, loaded *PreloadResult) ([]PlaneId, error) {
	ids := make([]PlaneId, 0, len(layout.Images))
	for _, img := range layout.Images {
		path := layout.Resolve(img.Src)
		asset, ok := loaded.Images[path]
		if !ok {
			for _, id := range ids {
				_ = store.Remove(id)
			}
			return nil, &AssetError{Kind: AssetImage, Path: path, Err: errors.New("not preloaded")}
		}
		ids = append(ids, store.Add(asset, img.Rect))
	}
	return ids, nil
}
