package viewmodel

// HomePage holds data for the login page template.
type HomePage struct {
	Title string
	Name  string
	Phone string
	Error string
}

// GamePage holds data for the play page template.
type GamePage struct {
	Title      string
	SessionID  string
	PlayerName string
	Width      int
	Height     int
	HUD        HUDFragment
	Outcome    OutcomeFragment
	Finished   bool
}

// HUDFragment holds the timer and score strip.
type HUDFragment struct {
	Remaining   int
	Duration    int
	Score       int
	PartsPlaced int
	TotalParts  int
	State       string
}

// OutcomeFragment holds the end-of-game panel.
type OutcomeFragment struct {
	SessionID   string
	Finished    bool
	IsWin       bool
	Score       int
	PartsPlaced int
	TotalParts  int
	TimeTaken   int
	Submit      string
	SubmitError string
	CanSubmit   bool
}
