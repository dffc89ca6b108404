package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"snowman/internal/viewmodel"
)

// HomePage renders the login form. The hidden width and height fields are
// filled in by app.js with the browser viewport.
func HomePage(data viewmodel.HomePage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		errorHTML := ""
		if data.Error != "" {
			errorHTML = fmt.Sprintf(`<p class="notice is-error">%s</p>`, templ.EscapeString(data.Error))
		}
		_, err := fmt.Fprintf(w, `<main class="login">
<h1 class="title">Build the snowman</h1>
<p class="subtitle">Drag every part onto the snowman before the clock runs out.</p>
%s<form method="post" action="/login" class="box" id="login-form">
<label class="label" for="name">Name</label>
<input class="input" id="name" name="name" maxlength="40" required value="%s">
<label class="label" for="phone">Phone</label>
<input class="input" id="phone" name="phone" inputmode="numeric" pattern="[0-9]{10,15}" required value="%s">
<input type="hidden" name="width" value="0">
<input type="hidden" name="height" value="0">
<button class="button is-primary" type="submit">Play</button>
</form>
</main>
<script src="/static/app.js"></script>`,
			errorHTML,
			templ.EscapeString(data.Name),
			templ.EscapeString(data.Phone),
		)
		return err
	})
	return layout(data.Title, body)
}
