package sketch

// HeadlessRenderer keeps the most recent frames in memory instead of drawing.
type HeadlessRenderer struct {
	Width, Height int
	Renders       int
	Resizes       int
	Released      bool

	// Fail, when set, is returned from every Render call.
	Fail error

	keep   int
	frames []*Frame
}

func NewHeadlessRenderer(keep int) *HeadlessRenderer {
	if keep <= 0 {
		keep = 1
	}
	return &HeadlessRenderer{keep: keep}
}

func (r *HeadlessRenderer) Resize(width, height int) {
	r.Width = width
	r.Height = height
	r.Resizes++
}

func (r *HeadlessRenderer) Render(frame *Frame) error {
	r.Renders++
	r.frames = append(r.frames, frame)
	if len(r.frames) > r.keep {
		r.frames = r.frames[len(r.frames)-r.keep:]
	}
	return r.Fail
}

func (r *HeadlessRenderer) Release() {
	r.Released = true
}

// Last returns the most recent frame, or nil before the first render.
func (r *HeadlessRenderer) Last() *Frame {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

func (r *HeadlessRenderer) Frames() []*Frame {
	return r.frames
}
