package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gekko3d/sketch"
	"github.com/gekko3d/sketch/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	layoutPath := flag.String("layout", "", "Page layout JSON describing images and their boxes")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	title := flag.String("title", "Sketch", "Window title")
	debug := flag.Bool("debug", false, "Enable debug logging")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error (overrides -debug)")
	timeout := flag.Duration("timeout", 10*time.Second, "Asset preload timeout")
	damping := flag.Float64("damping", float64(sketch.DefaultScrollDamping), "Scroll damping factor in (0, 1)")
	step := flag.Float64("step", float64(sketch.DefaultClockStep), "Shader clock increment per tick")
	post := flag.Bool("post", true, "Enable the scroll distortion pass")
	headless := flag.Bool("headless", false, "Run without a window or GPU")
	frames := flag.Uint64("frames", 0, "Stop after this many ticks (0 runs until closed)")
	orbit := flag.Bool("orbit", false, "Drag with the left button to orbit the camera")
	orbitReturn := flag.Float64("orbit-return", 0, "Fraction of the orbit angle undone per tick after a drag (0 keeps the pose)")
	flag.Parse()

	logger := sketch.NewDefaultLogger("sketch", *debug)
	if *logLevel != "" {
		level, err := sketch.ParseLevel(*logLevel)
		if err != nil {
			logger.Errorf("%v", err)
			os.Exit(2)
		}
		logger.SetLevel(level)
	}
	if err := run(logger, options{
		layoutPath:  *layoutPath,
		width:       *width,
		height:      *height,
		title:       *title,
		timeout:     *timeout,
		damping:     float32(*damping),
		step:        float32(*step),
		post:        *post,
		headless:    *headless,
		frames:      *frames,
		orbit:       *orbit,
		orbitReturn: float32(*orbitReturn),
	}); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

type options struct {
	layoutPath  string
	width       int
	height      int
	title       string
	timeout     time.Duration
	damping     float32
	step        float32
	post        bool
	headless    bool
	frames      uint64
	orbit       bool
	orbitReturn float32
}

func run(logger *sketch.DefaultLogger, opts options) error {
	layout := &sketch.PageLayout{Width: opts.width, Height: opts.height}
	if opts.layoutPath != "" {
		var err error
		layout, err = sketch.LoadPageLayout(opts.layoutPath)
		if err != nil {
			return err
		}
	}

	frameSync := sketch.NewFrameSyncModule(layout.Width, layout.Height)
	frameSync.ScrollDamping = opts.damping
	frameSync.ContentHeight = layout.ContentHeight
	frameSync.Post = opts.post

	app := sketch.NewApp()
	app.Commands().AddResources(logger)
	app.UseModules(
		sketch.TimeModule{ClockStep: opts.step},
		sketch.AssetServerModule{},
		frameSync,
	)
	if layout.Demo != nil {
		app.UseModules(sketch.DemoMeshModule{Size: mgl32.Vec2{layout.Demo.Width, layout.Demo.Height}})
	}
	if opts.orbit {
		app.UseModules(sketch.OrbitCameraModule{Return: opts.orbitReturn})
	}
	if !opts.headless {
		app.UseModules(&sketch.WindowModule{
			Width:         layout.Width,
			Height:        layout.Height,
			Title:         opts.title,
			PixelsPerLine: sketch.DefaultScrollPixelsPerLine,
			ContentHeight: layout.ContentHeight,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assets, _ := sketch.Resource[sketch.AssetServer](app)
	store, _ := sketch.Resource[sketch.PlaneStore](app)

	loaded, err := assets.Preload(ctx, layout.PreloadRequest(opts.timeout))
	if err != nil {
		return err
	}
	ids, err := sketch.SpawnPlanes(store, layout, loaded)
	if err != nil {
		return err
	}
	logger.Infof("Spawned %d planes from %d fonts, %d images", len(ids), len(loaded.Fonts), len(loaded.Images))
	if demo, ok := sketch.Resource[sketch.DemoMesh](app); ok {
		if _, err := sketch.SpawnDemo(store, demo, layout, loaded); err != nil {
			return err
		}
	}

	var renderer sketch.Renderer
	if opts.headless {
		renderer = app.UseHeadless()
		if opts.frames == 0 {
			opts.frames = 120
		}
	} else {
		window, _ := sketch.Resource[sketch.WindowState](app)
		defer window.Close()

		postFx, _ := sketch.Resource[sketch.PostProcess](app)
		r, err := gpu.NewRenderer(window.Window(), assets, gpu.Options{
			PlaneProgram: sketch.DefaultPlaneProgram(),
			PostProgram:  postFx.Program,
			Logger:       logger.Named("gpu"),
		})
		if err != nil {
			return err
		}
		renderer = r
		app.UseRenderer(sketch.RendererWGPU, r)
	}
	defer renderer.Release()

	if opts.frames > 0 {
		limit := opts.frames
		app.UseSystem(sketch.System(func(cmd *sketch.Commands) {
			if cmd.Ticks()+1 >= limit {
				cmd.Quit()
			}
		}).InStage(sketch.Finale))
	}

	err = app.Run(ctx)
	if stats, ok := sketch.Resource[sketch.FrameStats](app); ok {
		logger.Infof("Rendered %d frames, %d errors", stats.Frames, stats.Errors)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
