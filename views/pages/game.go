package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"snowman/internal/viewmodel"
	"snowman/views/components"
)

// GamePage renders the play surface. The canvas is driven by app.js over the
// pointer websocket; the HUD and outcome panels are swapped in from SSE.
func GamePage(data viewmodel.GamePage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := templ.EscapeString(data.SessionID)
		if _, err := fmt.Fprintf(w, `<main class="game" hx-ext="sse" sse-connect="/session/%s/stream">
<header class="game-header"><span class="player">%s</span><div sse-swap="hud">`,
			id, templ.EscapeString(data.PlayerName)); err != nil {
			return err
		}
		if err := components.HUD(data.HUD).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `</div></header>
<canvas id="board" data-session="%s" data-finished="%t" width="%d" height="%d"></canvas>
<div sse-swap="outcome">`, id, data.Finished, data.Width, data.Height); err != nil {
			return err
		}
		if err := components.Outcome(data.Outcome).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>
</main>
<script src="/static/app.js"></script>`)
		return err
	})
	return layout(data.Title, body)
}
