package game

import "math"

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
	minViewportWidth      = 320
	minViewportHeight     = 240
	maxViewportWidth      = 7680
	maxViewportHeight     = 4320

	trayInset = 120
)

// Viewport is the size of the play area in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize clamps the viewport to supported bounds. A zero or invalid
// viewport falls back to 1280x720.
func (v Viewport) Normalize() Viewport {
	if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return Viewport{Width: defaultViewportWidth, Height: defaultViewportHeight}
	}
	return Viewport{
		Width:  clamp(v.Width, minViewportWidth, maxViewportWidth),
		Height: clamp(v.Height, minViewportHeight, maxViewportHeight),
	}
}

// Target is the slot a part type must reach to count as placed.
type Target struct {
	Type      PartType
	Position  Point
	Radius    float64
	DrawOrder int
}

// targetSpec positions a target relative to the snowman anchor, in units of
// the viewport's shorter side.
type targetSpec struct {
	typ       PartType
	dx, dy    float64
	radius    float64
	drawOrder int
}

var snowmanLayout = []targetSpec{
	{SnowballBase, 0, 0, 0.13, 1},
	{HandLeft, -0.13, -0.16, 0.08, 1},
	{HandRight, 0.13, -0.16, 0.08, 1},
	{SnowballMiddle, 0, -0.16, 0.10, 2},
	{Scarf, -0.02, -0.18, 0.09, 5},
	{SnowballHead, 0, -0.29, 0.075, 4},
	{Mouth, 0, -0.26, 0.05, 6},
	{Eyes, 0, -0.31, 0.06, 6},
	{Carrot, 0.01, -0.28, 0.05, 6},
	{Hat, 0, -0.38, 0.09, 6},
}

// Registry is the immutable table of targets for one session.
type Registry struct {
	targets []Target
	byType  map[PartType]int
}

// NewRegistry derives the target table from the viewport.
func NewRegistry(viewport Viewport) *Registry {
	v := viewport.Normalize()
	base := math.Min(v.Width, v.Height)
	anchor := Point{X: v.Width / 2, Y: v.Height - base*0.2}

	r := &Registry{
		targets: make([]Target, 0, len(snowmanLayout)),
		byType:  make(map[PartType]int, len(snowmanLayout)),
	}
	for _, spec := range snowmanLayout {
		r.byType[spec.typ] = len(r.targets)
		r.targets = append(r.targets, Target{
			Type:      spec.typ,
			Position:  Point{X: anchor.X + spec.dx*base, Y: anchor.Y + spec.dy*base},
			Radius:    spec.radius * base,
			DrawOrder: spec.drawOrder,
		})
	}
	return r
}

// Target returns the slot for a part type.
func (r *Registry) Target(t PartType) (Target, bool) {
	idx, ok := r.byType[t]
	if !ok {
		return Target{}, false
	}
	return r.targets[idx], true
}

// Targets returns a copy of all targets in layout order.
func (r *Registry) Targets() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Types returns every part type that has a target.
func (r *Registry) Types() []PartType {
	out := make([]PartType, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t.Type)
	}
	return out
}

// Len returns the number of targets.
func (r *Registry) Len() int {
	return len(r.targets)
}

type traySlot struct {
	id  int
	typ PartType
}

var (
	traySnowballs = []traySlot{
		{1, SnowballBase}, {2, SnowballMiddle}, {3, SnowballHead},
	}
	trayAccessories = []traySlot{
		{100, Carrot}, {101, Eyes}, {102, Mouth}, {103, Hat},
		{104, HandLeft}, {105, HandRight}, {106, Scarf},
	}
)

// TrayParts creates the unlocked parts at their starting positions: snowballs
// in a column on the left edge, accessories on the right. A part's radius
// matches its target's.
func TrayParts(viewport Viewport, registry *Registry) []*Part {
	v := viewport.Normalize()
	parts := make([]*Part, 0, len(traySnowballs)+len(trayAccessories))

	column := func(slots []traySlot, x, top float64) {
		spacing := (v.Height - 100) / float64(len(slots))
		for i, slot := range slots {
			radius := 0.0
			if target, ok := registry.Target(slot.typ); ok {
				radius = target.Radius
			}
			parts = append(parts, &Part{
				ID:       slot.id,
				Type:     slot.typ,
				Position: Point{X: x, Y: top + float64(i)*spacing},
				Radius:   radius,
			})
		}
	}
	column(traySnowballs, trayInset, 100)
	column(trayAccessories, v.Width-trayInset, 80)
	return parts
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
