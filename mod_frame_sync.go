package sketch

// FrameSyncModule owns viewport, camera, scroll, pointer and plane state and
// keeps them in step with shader uniforms every tick:
//
//	PreUpdate   drain input events
//	Update      damp scroll, reposition planes
//	PostUpdate  hover raycast, advance hover tweens
//	PreRender   write uniforms
//
// Rendering itself is installed by UseRenderer.
type FrameSyncModule struct {
	Width          int
	Height         int
	CameraDistance float32
	ScrollDamping  float32
	ContentHeight  float32
	HoverDuration  float32
	Post           bool
}

func NewFrameSyncModule(width, height int) FrameSyncModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return FrameSyncModule{
		Width:          width,
		Height:         height,
		CameraDistance: DefaultCameraDistance,
		ScrollDamping:  DefaultScrollDamping,
		HoverDuration:  DefaultHoverDuration,
		Post:           true,
	}
}

func (mod FrameSyncModule) Install(app *App, cmd *Commands) {
	viewport := &Viewport{}
	viewport.Resize(mod.Width, mod.Height)

	scroll := NewScrollState(mod.ScrollDamping)
	scroll.ContentHeight = mod.ContentHeight
	scroll.SetViewportHeight(float32(mod.Height))

	store := NewPlaneStore()
	if mod.HoverDuration > 0 {
		store.HoverDuration = mod.HoverDuration
	}

	if _, ok := Resource[EventQueue](app); !ok {
		cmd.AddResources(&EventQueue{})
	}
	cmd.AddResources(
		viewport,
		NewCamera(mod.Width, mod.Height, mod.CameraDistance),
		scroll,
		&Pointer{},
		&Hover{},
		store,
		&PostProcess{
			Enabled: mod.Post,
			Program: DefaultDistortionProgram(),
		},
	)

	app.UseSystem(System(eventsSystem).InStage(PreUpdate))
	app.UseSystem(System(scrollSystem).InStage(Update))
	app.UseSystem(System(layoutSystem).InStage(Update))
	app.UseSystem(System(hoverSystem).InStage(PostUpdate))
	app.UseSystem(System(tweenSystem).InStage(PostUpdate))
	app.UseSystem(System(uniformSystem).InStage(PreRender))
}
