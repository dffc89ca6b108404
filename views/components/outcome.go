package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"snowman/internal/viewmodel"
)

// Outcome renders the end-of-game panel. It is empty while the game runs.
func Outcome(data viewmodel.OutcomeFragment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="outcome" id="outcome">`)
		if data.Finished {
			title := "Time's up!"
			if data.IsWin {
				title = "You built the snowman!"
			}
			fmt.Fprintf(&b, `<h2 class="outcome-title">%s</h2>`, templ.EscapeString(title))
			fmt.Fprintf(&b, `<p class="outcome-score">Score <strong>%d</strong></p>`, data.Score)
			fmt.Fprintf(&b, `<p>%d of %d parts placed in %s</p>`, data.PartsPlaced, data.TotalParts, templ.EscapeString(FormatClock(data.TimeTaken)))
			writeSubmit(&b, data)
			fmt.Fprintf(&b, `<form method="post" action="/session/%s/restart"><button class="button" type="submit">Play again</button></form>`, templ.EscapeString(data.SessionID))
			fmt.Fprintf(&b, `<form method="post" action="/session/%s/leave"><button class="button is-light" type="submit">Leave</button></form>`, templ.EscapeString(data.SessionID))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeSubmit(b *strings.Builder, data viewmodel.OutcomeFragment) {
	switch data.Submit {
	case "pending":
		b.WriteString(`<p class="submit-status">Submitting score...</p>`)
	case "success":
		b.WriteString(`<p class="submit-status is-success">Score submitted.</p>`)
	case "error":
		fmt.Fprintf(b, `<p class="submit-status is-error">Submission failed: %s</p>`, templ.EscapeString(data.SubmitError))
	}
	if data.CanSubmit {
		label := "Submit score"
		if data.Submit == "error" {
			label = "Retry submission"
		}
		fmt.Fprintf(b, `<form method="post" action="/session/%s/submit"><button class="button is-primary" type="submit">%s</button></form>`,
			templ.EscapeString(data.SessionID), templ.EscapeString(label))
	}
}
