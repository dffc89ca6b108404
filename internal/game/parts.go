package game

import "math"

// PartType identifies a snowman part. Each type has exactly one target slot.
type PartType string

const (
	SnowballBase   PartType = "snowball-base"
	SnowballMiddle PartType = "snowball-middle"
	SnowballHead   PartType = "snowball-head"
	HandLeft       PartType = "hand-left"
	HandRight      PartType = "hand-right"
	Scarf          PartType = "scarf"
	Hat            PartType = "hat"
	Eyes           PartType = "eyes"
	Mouth          PartType = "mouth"
	Carrot         PartType = "carrot"
)

// PartTypes returns the full part enumeration.
func PartTypes() []PartType {
	return []PartType{
		SnowballBase, SnowballMiddle, SnowballHead,
		HandLeft, HandRight, Scarf, Hat, Eyes, Mouth, Carrot,
	}
}

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Part is a movable snowman piece. Locked is true exactly while the part sits
// on the placed stack.
type Part struct {
	ID       int
	Type     PartType
	Position Point
	Radius   float64
	Locked   bool
}

// PointerSample is one reading from a pointer source. A nil *PointerSample
// means the source lost tracking.
type PointerSample struct {
	Position Point
	Pinching bool
}
