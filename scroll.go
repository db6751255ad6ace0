package sketch

// DefaultScrollDamping is the fraction of the remaining distance covered per tick.
const DefaultScrollDamping float32 = 0.1

// scrollSettle is the distance below which Current snaps onto Target.
const scrollSettle float32 = 1e-3

// ScrollState follows the page scroll offset with critically damped lag.
//
// Target is the page offset. Current approaches it by Damping of the remaining
// distance each tick and never passes it. Speed is the per-tick delta of
// Current, which drives the distortion pass.
type ScrollState struct {
	Target   float32
	Current  float32
	Previous float32
	Speed    float32
	Damping  float32

	// ContentHeight bounds Target to [0, ContentHeight-viewportHeight]
	// when positive.
	ContentHeight  float32
	viewportHeight float32
	// requested is the last offset asked for, before clamping.
	requested float32
}

func NewScrollState(damping float32) *ScrollState {
	if damping <= 0 || damping >= 1 {
		damping = DefaultScrollDamping
	}
	return &ScrollState{Damping: damping}
}

// SetViewportHeight re-clamps the last requested offset against the new
// scrollable range, so a resize never loses a pending scroll.
func (s *ScrollState) SetViewportHeight(height float32) {
	s.viewportHeight = height
	s.Target = s.clamp(s.requested)
}

// SetTarget sets the page offset, clamped to the scrollable range.
func (s *ScrollState) SetTarget(offset float32) {
	s.requested = offset
	s.Target = s.clamp(offset)
}

// Limit is the largest reachable offset, or 0 when unbounded.
func (s *ScrollState) Limit() float32 {
	if s.ContentHeight <= 0 {
		return 0
	}
	return max(0, s.ContentHeight-s.viewportHeight)
}

func (s *ScrollState) clamp(offset float32) float32 {
	if s.ContentHeight > 0 {
		offset = min(offset, s.Limit())
	}
	return max(0, offset)
}

// Step advances Current one damping step toward Target and updates Speed.
func (s *ScrollState) Step() {
	s.Previous = s.Current

	next := s.Current + (s.Target-s.Current)*s.Damping
	// float rounding must not carry Current past Target
	if (s.Current <= s.Target && next > s.Target) || (s.Current >= s.Target && next < s.Target) {
		next = s.Target
	}
	if d := s.Target - next; d < scrollSettle && d > -scrollSettle {
		next = s.Target
	}
	s.Current = next
	s.Speed = s.Current - s.Previous
}

func scrollSystem(scroll *ScrollState) {
	scroll.Step()
}
