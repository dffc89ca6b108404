package game

// IsComplete reports whether the stack holds a part for every registry type.
func IsComplete(stack *PlacedStack, registry *Registry) bool {
	for _, t := range registry.Types() {
		if !stack.Has(t) {
			return false
		}
	}
	return true
}

// Outcome is the final result of a session.
type Outcome struct {
	IsWin       bool `json:"isWin"`
	PartsPlaced int  `json:"partsPlaced"`
	TotalParts  int  `json:"totalParts"`
	TimeTaken   int  `json:"timeTaken"`
	Score       int  `json:"score"`
}

// ComputeOutcome scores a finished session.
func ComputeOutcome(isWin bool, stack *PlacedStack, registry *Registry, clock *Clock, pointsPerPart int) Outcome {
	placed := stack.Len()
	return Outcome{
		IsWin:       isWin,
		PartsPlaced: placed,
		TotalParts:  registry.Len(),
		TimeTaken:   clock.Elapsed(),
		Score:       placed * pointsPerPart,
	}
}
