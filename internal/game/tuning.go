package game

import "fmt"

// Tuning holds the gameplay constants. Fields carry env tags so servers can
// embed it in their configuration.
type Tuning struct {
	GrabMargin      float64 `env:"GRAB_MARGIN" envDefault:"60"`
	SnapThreshold   float64 `env:"SNAP_THRESHOLD" envDefault:"150"`
	PointsPerPart   int     `env:"POINTS_PER_PART" envDefault:"10"`
	DurationSeconds int     `env:"DURATION_SECONDS" envDefault:"120"`
}

// DefaultTuning returns the standard constants.
func DefaultTuning() Tuning {
	return Tuning{
		GrabMargin:      60,
		SnapThreshold:   150,
		PointsPerPart:   10,
		DurationSeconds: 120,
	}
}

// Validate rejects constants that would make the game unplayable.
func (t Tuning) Validate() error {
	if t.GrabMargin < 0 {
		return fmt.Errorf("grab margin must not be negative, got %v", t.GrabMargin)
	}
	if t.SnapThreshold <= 0 {
		return fmt.Errorf("snap threshold must be positive, got %v", t.SnapThreshold)
	}
	if t.PointsPerPart < 0 {
		return fmt.Errorf("points per part must not be negative, got %d", t.PointsPerPart)
	}
	if t.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive, got %d", t.DurationSeconds)
	}
	return nil
}
