package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"snowman/internal/game"
	"snowman/internal/gateway"
	"snowman/internal/users/sqlite"
)

type testServer struct {
	*httptest.Server
	store   *game.Store
	gateway gateway.Gateway
	users   *sqlite.Store
	client  *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	usersStore, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open users store: %v", err)
	}
	return newTestServerWithGateway(t, gateway.NewLocal(usersStore, ""), usersStore)
}

func newTestServerWithGateway(t *testing.T, gw gateway.Gateway, usersStore *sqlite.Store) *testServer {
	t.Helper()
	store := game.NewStore(game.DefaultTuning())
	logger := log.New(io.Discard, "", 0)
	cfg := Config{Logger: logger, GatewayTimeout: time.Second}

	r := chi.NewRouter()
	NewHomeHandler(store, gw, cfg).RegisterRoutes(r)
	gameHandler := NewGameHandler(store, gw, cfg)
	gameHandler.RegisterRoutes(r)
	gameHandler.RegisterStreams(r)
	NewPointerHandler(store, PointerConfig{Logger: logger}).RegisterStreams(r)
	if usersStore != nil {
		NewUsersHandler(usersStore, logger).RegisterRoutes(r)
	}

	srv := httptest.NewServer(r)
	jar, _ := cookiejar.New(nil)
	ts := &testServer{
		Server:  srv,
		store:   store,
		gateway: gw,
		users:   usersStore,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	t.Cleanup(func() {
		store.CloseAll()
		srv.Close()
		if usersStore != nil {
			_ = usersStore.Close()
		}
	})
	return ts
}

// login posts the login form and returns the started session.
func (ts *testServer) login(t *testing.T, name, phone string) *game.Session {
	t.Helper()
	resp := ts.postForm(t, "/login", url.Values{
		"name":   {name},
		"phone":  {phone},
		"width":  {"1280"},
		"height": {"720"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status %d, want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	id := strings.TrimPrefix(loc, "/session/")
	session, ok := ts.store.GetSession(id)
	if !ok {
		t.Fatalf("no session for redirect %q", loc)
	}
	return session
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := ts.client.PostForm(ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := ts.client.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (ts *testServer) cookieHeader(session *game.Session) http.Header {
	return http.Header{"Cookie": {playerCookieName(session.ID) + "=" + session.Player.ID}}
}

// pointerSteps returns the samples that carry one pooled part onto its target.
func pointerSteps(part game.PartView, target game.TargetView) []*PointerMessage {
	return []*PointerMessage{
		{X: part.X, Y: part.Y},
		{X: part.X, Y: part.Y, Pinching: true},
		{X: target.X, Y: target.Y, Pinching: true},
		{X: target.X, Y: target.Y},
	}
}

func targetFor(snap game.Snapshot, typ game.PartType) (game.TargetView, bool) {
	for _, target := range snap.Targets {
		if target.Type == typ {
			return target, true
		}
	}
	return game.TargetView{}, false
}

// winSession places every part directly on the session.
func winSession(t *testing.T, session *game.Session) {
	t.Helper()
	snap := session.Snapshot()
	for _, part := range snap.Pool {
		target, _ := targetFor(snap, part.Type)
		for _, msg := range pointerSteps(part, target) {
			sample := &game.PointerSample{Position: game.Point{X: msg.X, Y: msg.Y}, Pinching: msg.Pinching}
			if _, err := session.HandlePointer(sample, time.Now().UTC()); err != nil {
				t.Fatalf("HandlePointer: %v", err)
			}
		}
	}
	if session.State() != game.StateFinished {
		t.Fatalf("session state %q after placing every part", session.State())
	}
}

// failingGateway refuses every call.
type failingGateway struct {
	err error
}

func (g failingGateway) Login(ctx context.Context, name, phone string) (game.Player, error) {
	return game.Player{}, g.err
}

func (g failingGateway) SubmitScore(ctx context.Context, player game.Player, score, timeTaken int) error {
	return g.err
}

var errGatewayDown = errors.Join(gateway.ErrUnavailable, errors.New("connection refused"))
