package sketch

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// DefaultScrollPixelsPerLine converts one wheel notch into page pixels.
const DefaultScrollPixelsPerLine = 40

// WindowState is the shared GLFW window. Its callbacks only push events; all
// state changes happen when the frame loop drains the queue.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	scrollOffset  float32
	pixelsPerLine float32
	contentHeight float32

	dragging     bool
	lastX, lastY float64
	hasLast      bool
}

func (s *WindowState) Window() *glfw.Window {
	return s.windowGlfw
}

// OpenWindow initialises GLFW and creates a window without a client API;
// the surface is provided by WebGPU.
func OpenWindow(width, height int, title string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		windowGlfw:    win,
		WindowWidth:   width,
		WindowHeight:  height,
		windowTitle:   title,
		pixelsPerLine: DefaultScrollPixelsPerLine,
	}, nil
}

func (s *WindowState) Close() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
	}
	glfw.Terminate()
}

// WindowModule opens a window and turns its callbacks into queue events.
type WindowModule struct {
	Width         int
	Height        int
	Title         string
	PixelsPerLine float32
	// ContentHeight bounds the accumulated wheel offset to the page height
	// minus the current window height when positive.
	ContentHeight float32
}

// NewWindowModule creates a window module. Zero sizes and an empty title get
// defaults.
func NewWindowModule(width, height int, title string) *WindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Sketch"
	}
	return &WindowModule{
		Width:         width,
		Height:        height,
		Title:         title,
		PixelsPerLine: DefaultScrollPixelsPerLine,
	}
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}

	ws, err := OpenWindow(m.Width, m.Height, m.Title)
	if err != nil {
		app.Logger().Errorf("%v", err)
		panic(err)
	}
	if m.PixelsPerLine > 0 {
		ws.pixelsPerLine = m.PixelsPerLine
	}
	ws.contentHeight = m.ContentHeight

	queue, ok := Resource[EventQueue](app)
	if !ok {
		queue = &EventQueue{}
		cmd.AddResources(queue)
	}
	ws.bindEvents(queue)

	cmd.AddResources(ws)
	app.UseSystem(System(windowEventsSystem).InStage(Prelude))
	app.Logger().Infof("Created window (%dx%d) '%s'", m.Width, m.Height, m.Title)
}

func (s *WindowState) bindEvents(queue *EventQueue) {
	win := s.windowGlfw

	win.SetSizeCallback(func(w *glfw.Window, width, height int) {
		queue.Push(s.resized(width, height)...)
	})

	win.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		queue.Push(s.wheel(yoff))
	})

	win.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		width, height := w.GetSize()
		queue.Push(s.cursorMoved(xpos, ypos, width, height)...)
	})

	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			s.dragging = action != glfw.Release
		}
	})

	win.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		if !entered {
			s.hasLast = false
			queue.Push(PointerLeft{})
		}
	})

	queue.Push(s.resized(win.GetSize())...)
}

// cursorMoved converts a cursor position in window pixels into a pointer
// event, plus a drag delta while the left button is held.
func (s *WindowState) cursorMoved(xpos, ypos float64, width, height int) []Event {
	if width <= 0 || height <= 0 {
		return nil
	}
	events := []Event{PointerMoved{
		X: float32(xpos/float64(width))*2 - 1,
		Y: 1 - float32(ypos/float64(height))*2,
	}}
	if s.dragging && s.hasLast {
		events = append(events, Dragged{DX: float32(xpos - s.lastX), DY: float32(ypos - s.lastY)})
	}
	s.lastX, s.lastY, s.hasLast = xpos, ypos, true
	return events
}

// maxScroll is the page height that does not fit in the current window.
func (s *WindowState) maxScroll() float32 {
	if s.contentHeight <= 0 {
		return 0
	}
	return max(0, s.contentHeight-float32(s.WindowHeight))
}

// wheel accumulates one wheel movement into the page offset.
func (s *WindowState) wheel(yoff float64) Scrolled {
	s.scrollOffset = s.clampScroll(s.scrollOffset - float32(yoff)*s.pixelsPerLine)
	return Scrolled{Offset: s.scrollOffset}
}

// resized records the new size. A taller window can shrink the scrollable
// range, in which case the offset is pulled back and re-sent.
func (s *WindowState) resized(width, height int) []Event {
	events := []Event{Resized{Width: width, Height: height}}
	if width <= 0 || height <= 0 {
		return events
	}
	s.WindowWidth = width
	s.WindowHeight = height
	if clamped := s.clampScroll(s.scrollOffset); clamped != s.scrollOffset {
		s.scrollOffset = clamped
		events = append(events, Scrolled{Offset: clamped})
	}
	return events
}

func (s *WindowState) clampScroll(offset float32) float32 {
	if s.contentHeight > 0 {
		offset = min(offset, s.maxScroll())
	}
	return max(0, offset)
}

func windowEventsSystem(state *WindowState, cmd *Commands) {
	if state.windowGlfw == nil {
		cmd.Quit()
		return
	}
	glfw.PollEvents()
	if state.windowGlfw.ShouldClose() {
		cmd.Quit()
	}
}
