package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"snowman/internal/viewmodel"
)

// HUD renders the timer and score strip.
func HUD(data viewmodel.HUDFragment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		timerClass := "hud-timer"
		if data.Remaining <= 10 && data.State == "playing" {
			timerClass += " is-low"
		}
		_, err := fmt.Fprintf(w,
			`<div class="hud" id="hud"><span class="%s">%s</span><span class="hud-score">Score %d</span><span class="hud-parts">%d / %d parts</span></div>`,
			timerClass,
			templ.EscapeString(FormatClock(data.Remaining)),
			data.Score,
			data.PartsPlaced,
			data.TotalParts,
		)
		return err
	})
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
