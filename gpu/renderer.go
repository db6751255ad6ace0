package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/sketch"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type Options struct {
	PlaneProgram sketch.ShaderProgram
	PostProgram  sketch.ShaderProgram
	ClearColor   wgpu.Color
	PresentMode  wgpu.PresentMode
	Logger       sketch.Logger
}

// Renderer draws frame snapshots into a GLFW window surface. Planes go into
// an offscreen target when post-processing is on; the distortion pass then
// samples that target onto the surface.
type Renderer struct {
	window *glfw.Window
	assets *sketch.AssetServer
	logger sketch.Logger
	clear  wgpu.Color

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	planePipeline *wgpu.RenderPipeline
	postPipeline  *wgpu.RenderPipeline
	sampler       *wgpu.Sampler

	vertexBuf *wgpu.Buffer
	indexBuf  *wgpu.Buffer
	cameraBuf *wgpu.Buffer
	cameraBG  *wgpu.BindGroup

	postBuf       *wgpu.Buffer
	postBG        *wgpu.BindGroup
	offscreen     *wgpu.Texture
	offscreenView *wgpu.TextureView

	textures map[sketch.AssetId]*texture
	planes   map[sketch.PlaneId]*planeBinding
}

type texture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type planeBinding struct {
	asset     sketch.AssetId
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	seen      uint64
}

// NewRenderer sets up the device and both pipelines. Shader failures are
// returned as *sketch.ShaderError.
func NewRenderer(window *glfw.Window, assets *sketch.AssetServer, opts Options) (*Renderer, error) {
	if opts.PlaneProgram.Name == "" {
		opts.PlaneProgram = sketch.DefaultPlaneProgram()
	}
	if opts.PostProgram.Name == "" {
		opts.PostProgram = sketch.DefaultDistortionProgram()
	}
	if opts.ClearColor == (wgpu.Color{}) {
		opts.ClearColor = wgpu.Color{R: 0.04, G: 0.04, B: 0.05, A: 1}
	}
	if opts.PresentMode == 0 {
		opts.PresentMode = wgpu.PresentModeFifo
	}
	if err := opts.PlaneProgram.Validate(); err != nil {
		return nil, err
	}
	if err := opts.PostProgram.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		window:   window,
		assets:   assets,
		logger:   opts.Logger,
		clear:    opts.ClearColor,
		textures: make(map[sketch.AssetId]*texture),
		planes:   make(map[sketch.PlaneId]*planeBinding),
	}
	if r.logger == nil {
		r.logger = sketch.NewDefaultLogger("gpu", false)
	}

	if err := r.initDevice(opts.PresentMode); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initPipelines(opts.PlaneProgram, opts.PostProgram); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initBuffers(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.createOffscreen(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initDevice(presentMode wgpu.PresentMode) error {
	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(r.window))

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.adapter = adapter

	r.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.queue = r.device.GetQueue()

	width, height := r.window.GetFramebufferSize()
	caps := r.surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return errors.New("surface reports no formats")
	}

	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(adapter, r.device, r.config)
	r.logger.Infof("Surface configured %dx%d format %v", width, height, r.config.Format)
	return nil
}

func (r *Renderer) createModule(program sketch.ShaderProgram, stage sketch.ShaderStage, code string) (*wgpu.ShaderModule, error) {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          program.Name + " " + string(stage),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, &sketch.ShaderError{Program: program.Name, Stage: stage, Err: err}
	}
	return module, nil
}

func (r *Renderer) createPipeline(program sketch.ShaderProgram, buffers []wgpu.VertexBufferLayout, blend *wgpu.BlendState) (*wgpu.RenderPipeline, error) {
	vs, err := r.createModule(program, sketch.StageVertex, program.Vertex)
	if err != nil {
		return nil, err
	}
	defer vs.Release()

	fs, err := r.createModule(program, sketch.StageFragment, program.Fragment)
	if err != nil {
		return nil, err
	}
	defer fs.Release()

	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: program.Name,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: sketch.VertexEntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: sketch.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    r.config.Format,
				Blend:     blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", program.Name, err)
	}
	return pipeline, nil
}

func (r *Renderer) initPipelines(planeProgram, postProgram sketch.ShaderProgram) error {
	var err error
	r.planePipeline, err = r.createPipeline(planeProgram,
		[]wgpu.VertexBufferLayout{createVertexBufferLayout(quadVertex{})},
		&wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		})
	if err != nil {
		return err
	}

	r.postPipeline, err = r.createPipeline(postProgram, nil, nil)
	if err != nil {
		return err
	}

	r.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   1,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	return err
}

func (r *Renderer) initBuffers() error {
	var err error
	r.vertexBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Plane Vertices",
		Contents: toBufferBytes(quadVertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return err
	}
	r.indexBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Plane Indices",
		Contents: wgpu.ToBytes(quadIndices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return err
	}

	r.cameraBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Camera",
		Contents: toBufferBytes(cameraUniform{ViewProj: mgl32.Ident4()}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	r.cameraBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: r.planePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.cameraBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}

	r.postBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Post",
		Contents: toBufferBytes(postUniform{}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	return err
}

// createOffscreen (re)creates the scene target at the surface size along
// with the bind group the post pass samples it through.
func (r *Renderer) createOffscreen() error {
	if r.config.Width == 0 || r.config.Height == 0 {
		return nil
	}
	r.releaseOffscreen()

	var err error
	r.offscreen, err = r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Scene Target",
		Size:          wgpu.Extent3D{Width: r.config.Width, Height: r.config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        r.config.Format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return err
	}
	r.offscreenView, err = r.offscreen.CreateView(nil)
	if err != nil {
		return err
	}

	r.postBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: r.postPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.postBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: r.offscreenView},
			{Binding: 2, Sampler: r.sampler},
		},
	})
	return err
}

func (r *Renderer) releaseOffscreen() {
	if r.postBG != nil {
		r.postBG.Release()
		r.postBG = nil
	}
	if r.offscreenView != nil {
		r.offscreenView.Release()
		r.offscreenView = nil
	}
	if r.offscreen != nil {
		r.offscreen.Release()
		r.offscreen = nil
	}
}

// Resize reconfigures the surface from the window framebuffer, which differs
// from the logical size on HiDPI displays.
func (r *Renderer) Resize(width, height int) {
	if r.window != nil {
		width, height = r.window.GetFramebufferSize()
	}
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
	if err := r.createOffscreen(); err != nil {
		r.logger.Errorf("resize scene target: %v", err)
	}
}

func (r *Renderer) Render(frame *sketch.Frame) error {
	if r.config.Width == 0 || r.config.Height == 0 {
		return nil
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	if err := r.queue.WriteBuffer(r.cameraBuf, 0, toBufferBytes(cameraUniform{ViewProj: frame.ViewProjection()})); err != nil {
		return err
	}

	var errs []error
	draws := make([]*planeBinding, 0, len(frame.Planes))
	for _, p := range frame.Planes {
		binding, err := r.bindPlane(frame.Index, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		draws = append(draws, binding)
	}
	r.dropStalePlanes(frame.Index)

	post := frame.Post.Enabled && r.offscreenView != nil
	target := view
	if post {
		target = r.offscreenView
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clear,
		}},
	})
	pass.SetPipeline(r.planePipeline)
	pass.SetBindGroup(0, r.cameraBG, nil)
	pass.SetVertexBuffer(0, r.vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	for _, d := range draws {
		pass.SetBindGroup(1, d.bindGroup, nil)
		pass.DrawIndexed(uint32(len(quadIndices)), 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("plane pass: %w", err)
	}

	if post {
		if err := r.queue.WriteBuffer(r.postBuf, 0, toBufferBytes(postUniform{
			Strength:   frame.Post.Strength,
			Time:       frame.Post.Time,
			Resolution: mgl32.Vec2{float32(r.config.Width), float32(r.config.Height)},
		})); err != nil {
			return err
		}

		postPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clear,
			}},
		})
		postPass.SetPipeline(r.postPipeline)
		postPass.SetBindGroup(0, r.postBG, nil)
		postPass.Draw(3, 1, 0, 0)
		if err := postPass.End(); err != nil {
			return fmt.Errorf("post pass: %w", err)
		}
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	r.queue.Submit(cmd)
	r.surface.Present()

	return errors.Join(errs...)
}

// bindPlane makes sure the plane has a uniform buffer and a bind group for
// its current texture, then uploads this frame's uniforms.
func (r *Renderer) bindPlane(index uint64, p sketch.PlaneDraw) (*planeBinding, error) {
	tex, err := r.texture(p.Texture)
	if err != nil {
		return nil, fmt.Errorf("plane %s: %w", p.Id, err)
	}

	binding, ok := r.planes[p.Id]
	if !ok {
		binding = &planeBinding{}
		binding.buffer, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Plane " + string(p.Id),
			Size:  uint64(len(toBufferBytes(planeUniform{}))),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		r.planes[p.Id] = binding
	}

	if binding.bindGroup == nil || binding.asset != p.Texture {
		if binding.bindGroup != nil {
			binding.bindGroup.Release()
		}
		binding.bindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: r.planePipeline.GetBindGroupLayout(1),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: binding.buffer, Size: wgpu.WholeSize},
				{Binding: 1, TextureView: tex.view},
				{Binding: 2, Sampler: r.sampler},
			},
		})
		if err != nil {
			binding.bindGroup = nil
			return nil, err
		}
		binding.asset = p.Texture
	}
	binding.seen = index

	err = r.queue.WriteBuffer(binding.buffer, 0, toBufferBytes(planeUniformFor(p)))
	if err != nil {
		return nil, err
	}
	return binding, nil
}

func planeUniformFor(p sketch.PlaneDraw) planeUniform {
	return planeUniform{
		Model:       p.Model,
		Size:        p.Size,
		HoverUV:     p.Uniforms.HoverUV,
		Time:        p.Uniforms.Time,
		Hover:       p.Uniforms.Hover,
		ScrollSpeed: p.Uniforms.ScrollSpeed,
	}
}

func (r *Renderer) dropStalePlanes(index uint64) {
	for id, binding := range r.planes {
		if binding.seen == index {
			continue
		}
		if binding.bindGroup != nil {
			binding.bindGroup.Release()
		}
		binding.buffer.Release()
		delete(r.planes, id)
	}
}

// texture uploads an image asset on first use.
func (r *Renderer) texture(id sketch.AssetId) (*texture, error) {
	if tex, ok := r.textures[id]; ok {
		return tex, nil
	}
	img, ok := r.assets.Image(id)
	if !ok {
		return nil, &sketch.AssetError{Kind: sketch.AssetImage, Path: string(id), Err: errors.New("not loaded")}
	}

	extent := wgpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1}
	t, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         img.Path,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	err = r.queue.WriteTexture(
		t.AsImageCopy(),
		img.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  img.Width * 4,
			RowsPerImage: img.Height,
		},
		&extent,
	)
	if err != nil {
		t.Release()
		return nil, err
	}

	view, err := t.CreateView(nil)
	if err != nil {
		t.Release()
		return nil, err
	}

	tex := &texture{texture: t, view: view}
	r.textures[id] = tex
	r.logger.Debugf("Uploaded texture %s (%dx%d)", img.Path, img.Width, img.Height)
	return tex, nil
}

func (r *Renderer) Release() {
	for id, binding := range r.planes {
		if binding.bindGroup != nil {
			binding.bindGroup.Release()
		}
		binding.buffer.Release()
		delete(r.planes, id)
	}
	for id, tex := range r.textures {
		tex.view.Release()
		tex.texture.Release()
		delete(r.textures, id)
	}
	r.releaseOffscreen()

	for _, b := range []*wgpu.Buffer{r.vertexBuf, r.indexBuf, r.cameraBuf, r.postBuf} {
		if b != nil {
			b.Release()
		}
	}
	r.vertexBuf, r.indexBuf, r.cameraBuf, r.postBuf = nil, nil, nil, nil

	if r.cameraBG != nil {
		r.cameraBG.Release()
		r.cameraBG = nil
	}
	if r.sampler != nil {
		r.sampler.Release()
		r.sampler = nil
	}
	if r.planePipeline != nil {
		r.planePipeline.Release()
		r.planePipeline = nil
	}
	if r.postPipeline != nil {
		r.postPipeline.Release()
		r.postPipeline = nil
	}
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}

var _ sketch.Renderer = (*Renderer)(nil)
