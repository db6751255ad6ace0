package sketch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/sync/errgroup"
)

// PreloadRequest lists everything that must be ready before the first tick.
type PreloadRequest struct {
	Fonts   []string
	Images  []string
	Timeout time.Duration
	// Workers bounds concurrent image decodes. Defaults to GOMAXPROCS.
	Workers int
}

// PreloadResult maps requested paths to asset ids.
type PreloadResult struct {
	mu     sync.Mutex
	Fonts  map[string]AssetId
	Images map[string]AssetId
}

func (r *PreloadResult) put(kind AssetKind, path string, id AssetId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch kind {
	case AssetFont:
		r.Fonts[path] = id
	case AssetImage:
		r.Images[path] = id
	}
}

// Preload loads fonts and images as two independent groups and returns once
// both are ready, one fails, or the timeout elapses. A timeout is reported as
// ErrAssetTimeout; the partially loaded assets stay in the server.
func (server *AssetServer) Preload(ctx context.Context, req PreloadRequest) (*PreloadResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	res := &PreloadResult{
		Fonts:  make(map[string]AssetId, len(req.Fonts)),
		Images: make(map[string]AssetId, len(req.Images)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.preloadFonts(gctx, req.Fonts, res)
	})
	g.Go(func() error {
		return server.preloadImages(gctx, req.Images, req.Workers, res)
	})

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			server.Logger.Errorf("Preload failed: %v", err)
			return nil, preloadErr(err, req.Timeout)
		}
		server.Logger.Infof("Preloaded %d fonts, %d images in %s", len(res.Fonts), len(res.Images), time.Since(start))
		return res, nil
	case <-ctx.Done():
		server.Logger.Errorf("Preload interrupted after %s: %v", time.Since(start), ctx.Err())
		return nil, preloadErr(ctx.Err(), req.Timeout)
	}
}

func preloadErr(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrAssetTimeout, timeout)
	}
	return err
}

func (server *AssetServer) preloadFonts(ctx context.Context, paths []string, res *PreloadResult) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := server.LoadFont(path)
		if err != nil {
			return err
		}
		res.put(AssetFont, path, id)
	}
	return nil
}

// preloadImages fans decodes out over a worker pool and waits for all of them.
func (server *AssetServer) preloadImages(ctx context.Context, paths []string, workers int, res *PreloadResult) error {
	if len(paths) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	pool := worker.NewDynamicWorkerPool(workers, len(paths), 1*time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, len(paths))
	for i, path := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					errs <- err
					return nil, err
				}
				id, err := server.LoadImage(path)
				if err != nil {
					errs <- err
					return nil, err
				}
				res.put(AssetImage, path, id)
				return id, nil
			},
		})
	}
	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return err
	}
	return nil
}
