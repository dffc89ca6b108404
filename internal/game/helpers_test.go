package game

import (
	"testing"
	"time"
)

var testStart = time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

var testViewport = Viewport{Width: 1280, Height: 720}

func startedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Player{ID: "7", Name: "alice"}, testViewport, DefaultTuning())
	if err := s.Start(testStart); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func sample(x, y float64, pinching bool) *PointerSample {
	return &PointerSample{Position: Point{X: x, Y: y}, Pinching: pinching}
}

func partOfType(t *testing.T, s *Session, typ PartType) *Part {
	t.Helper()
	var found *Part
	s.pool.Each(func(p *Part) {
		if p.Type == typ {
			found = p
		}
	})
	if found == nil {
		t.Fatalf("no pooled part of type %s", typ)
	}
	return found
}

func targetOf(t *testing.T, s *Session, typ PartType) Point {
	t.Helper()
	target, ok := s.registry.Target(typ)
	if !ok {
		t.Fatalf("no target for %s", typ)
	}
	return target.Position
}

// dragTo grabs the part of typ where it lies, drags it to dest and lets go.
// It returns the action of the release sample.
func dragTo(t *testing.T, s *Session, typ PartType, dest Point) Action {
	t.Helper()
	part := partOfType(t, s, typ)
	from := part.Position
	mustHandle(t, s, sample(from.X, from.Y, false))
	if got := mustHandle(t, s, sample(from.X, from.Y, true)); got != ActionPick {
		t.Fatalf("pick %s: action %v, want pick", typ, got)
	}
	mustHandle(t, s, sample((from.X+dest.X)/2, (from.Y+dest.Y)/2, true))
	mustHandle(t, s, sample(dest.X, dest.Y, true))
	return mustHandle(t, s, sample(dest.X, dest.Y, false))
}

func place(t *testing.T, s *Session, typ PartType) {
	t.Helper()
	if got := dragTo(t, s, typ, targetOf(t, s, typ)); got != ActionPlace {
		t.Fatalf("place %s: action %v, want place", typ, got)
	}
}

func mustHandle(t *testing.T, s *Session, smp *PointerSample) Action {
	t.Helper()
	action, err := s.HandlePointer(smp, testStart)
	if err != nil {
		t.Fatalf("HandlePointer: %v", err)
	}
	return action
}

// assertInvariants checks pool/stack disjointness, coverage, the one-per-type
// rule and the locked flag.
func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[int]string)
	types := make(map[PartType]bool)
	s.pool.Each(func(p *Part) {
		if where, dup := seen[p.ID]; dup {
			t.Fatalf("part %d in pool and %s", p.ID, where)
		}
		seen[p.ID] = "pool"
		if p.Locked {
			t.Fatalf("pooled part %d is locked", p.ID)
		}
	})
	s.stack.Each(func(p *Part) {
		if where, dup := seen[p.ID]; dup {
			t.Fatalf("part %d in stack and %s", p.ID, where)
		}
		seen[p.ID] = "stack"
		if !p.Locked {
			t.Fatalf("placed part %d is not locked", p.ID)
		}
		if types[p.Type] {
			t.Fatalf("two placed parts of type %s", p.Type)
		}
		types[p.Type] = true
	})
	if len(seen) != len(PartTypes()) {
		t.Fatalf("%d parts tracked, want %d", len(seen), len(PartTypes()))
	}
}
