package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"snowman/internal/viewmodel"
)

func TestHomePageEscapesInput(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.HomePage{Title: "Snowman", Name: `"><script>`, Error: "phone must be 10 to 15 digits"}
	if err := HomePage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if strings.Contains(html, `"><script>`) {
		t.Error("name was not escaped")
	}
	for _, want := range []string{"<title>Snowman</title>", `action="/login"`, "phone must be 10 to 15 digits", `name="width"`} {
		if !strings.Contains(html, want) {
			t.Errorf("home html missing %q", want)
		}
	}
}

func TestGamePage(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.GamePage{
		Title:      "Snowman",
		SessionID:  "abc",
		PlayerName: "alice",
		Width:      1280,
		Height:     720,
		HUD:        viewmodel.HUDFragment{Remaining: 120, TotalParts: 10, State: "playing"},
		Outcome:    viewmodel.OutcomeFragment{SessionID: "abc"},
	}
	if err := GamePage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{`sse-connect="/session/abc/stream"`, `data-session="abc"`, `width="1280"`, "2:00", `id="outcome"`} {
		if !strings.Contains(html, want) {
			t.Errorf("game html missing %q", want)
		}
	}
}
