package game

// PartPool holds the parts that are not placed yet, in insertion order.
type PartPool struct {
	parts []*Part
}

// Add appends a part to the pool.
func (p *PartPool) Add(part *Part) {
	p.parts = append(p.parts, part)
}

// Get returns the pooled part with the given id.
func (p *PartPool) Get(id int) (*Part, bool) {
	for _, part := range p.parts {
		if part.ID == id {
			return part, true
		}
	}
	return nil, false
}

// Remove takes the part with the given id out of the pool.
func (p *PartPool) Remove(id int) (*Part, bool) {
	for i, part := range p.parts {
		if part.ID == id {
			p.parts = append(p.parts[:i], p.parts[i+1:]...)
			return part, true
		}
	}
	return nil, false
}

// Len returns the number of pooled parts.
func (p *PartPool) Len() int {
	return len(p.parts)
}

// Each calls fn for every pooled part in pool order.
func (p *PartPool) Each(fn func(*Part)) {
	for _, part := range p.parts {
		fn(part)
	}
}

// Nearest returns the unlocked part closest to pos whose distance is strictly
// less than its radius plus margin. Ties keep the earlier part in pool order.
func (p *PartPool) Nearest(pos Point, margin float64) (*Part, bool) {
	var (
		best     *Part
		bestDist float64
	)
	for _, part := range p.parts {
		if part.Locked {
			continue
		}
		d := part.Position.Dist(pos)
		if d >= part.Radius+margin {
			continue
		}
		if best == nil || d < bestDist {
			best = part
			bestDist = d
		}
	}
	return best, best != nil
}

// PlacedStack holds snapped parts in placement order, at most one per type.
type PlacedStack struct {
	parts  []*Part
	byType map[PartType]int
}

// Push places a part on the stack. It refuses a second part of a type.
func (s *PlacedStack) Push(part *Part) bool {
	if s.byType == nil {
		s.byType = make(map[PartType]int)
	}
	if _, dup := s.byType[part.Type]; dup {
		return false
	}
	s.byType[part.Type] = part.ID
	s.parts = append(s.parts, part)
	return true
}

// Has reports whether a part of type t is placed.
func (s *PlacedStack) Has(t PartType) bool {
	_, ok := s.byType[t]
	return ok
}

// Len returns the number of placed parts.
func (s *PlacedStack) Len() int {
	return len(s.parts)
}

// Each calls fn for every placed part in placement order.
func (s *PlacedStack) Each(fn func(*Part)) {
	for _, part := range s.parts {
		fn(part)
	}
}
