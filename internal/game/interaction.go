package game

// Hold is the controller's grip state: either idle or holding one part.
// The zero value is idle.
type Hold struct {
	holding bool
	partID  int
}

// Idle returns the empty grip.
func Idle() Hold {
	return Hold{}
}

// Holding returns a grip on the given part.
func Holding(partID int) Hold {
	return Hold{holding: true, partID: partID}
}

// PartID returns the held part id, or false when idle.
func (h Hold) PartID() (int, bool) {
	return h.partID, h.holding
}

// IsIdle reports whether nothing is held.
func (h Hold) IsIdle() bool {
	return !h.holding
}

// Action describes what a pointer sample did to the board.
type Action int

const (
	ActionNone Action = iota
	ActionPick
	ActionDrag
	ActionPlace
	ActionMiss
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionPick:
		return "pick"
	case ActionDrag:
		return "drag"
	case ActionPlace:
		return "place"
	case ActionMiss:
		return "miss"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Changed reports whether the action mutated the board.
func (a Action) Changed() bool {
	return a != ActionNone
}

// Controller turns pointer samples into pick, drag and drop transitions on a
// pool and stack. It does not check session state; callers gate it.
type Controller struct {
	pool     *PartPool
	stack    *PlacedStack
	registry *Registry
	tuning   Tuning

	hold         Hold
	prevPinching bool
}

// NewController binds a controller to a session's collections.
func NewController(pool *PartPool, stack *PlacedStack, registry *Registry, tuning Tuning) *Controller {
	return &Controller{
		pool:     pool,
		stack:    stack,
		registry: registry,
		tuning:   tuning,
	}
}

// Hold returns the current grip.
func (c *Controller) Hold() Hold {
	return c.hold
}

// HandlePointer applies one sample. A nil sample cancels any hold without
// testing for a drop.
func (c *Controller) HandlePointer(sample *PointerSample) Action {
	if sample == nil {
		c.prevPinching = false
		if c.hold.IsIdle() {
			return ActionNone
		}
		c.hold = Idle()
		return ActionCancel
	}

	rising := sample.Pinching && !c.prevPinching
	falling := !sample.Pinching && c.prevPinching
	c.prevPinching = sample.Pinching

	action := ActionNone
	if rising && c.hold.IsIdle() {
		if part, ok := c.pool.Nearest(sample.Position, c.tuning.GrabMargin); ok {
			c.hold = Holding(part.ID)
			action = ActionPick
		}
	}

	id, holding := c.hold.PartID()
	if !holding {
		return action
	}
	part, ok := c.pool.Get(id)
	if !ok {
		c.hold = Idle()
		return action
	}
	part.Position = sample.Position
	if action == ActionNone {
		action = ActionDrag
	}

	if falling {
		action = c.drop(part)
	}
	return action
}

func (c *Controller) drop(part *Part) Action {
	c.hold = Idle()
	target, ok := c.registry.Target(part.Type)
	if !ok || c.stack.Has(part.Type) {
		return ActionMiss
	}
	if part.Position.Dist(target.Position) >= c.tuning.SnapThreshold {
		return ActionMiss
	}
	if _, ok := c.pool.Remove(part.ID); !ok {
		return ActionMiss
	}
	part.Position = target.Position
	part.Locked = true
	c.stack.Push(part)
	return ActionPlace
}
