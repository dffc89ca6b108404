package handlers

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"snowman/internal/game"
)

func dialPointer(t *testing.T, ts *testServer, session *game.Session) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/" + session.ID + "/pointer"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, ts.cookieHeader(session))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snap game.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	return snap
}

func sendPointer(t *testing.T, conn *websocket.Conn, msg *PointerMessage) game.Snapshot {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write pointer: %v", err)
	}
	return readSnapshot(t, conn)
}

func TestPointer_RejectsStrangers(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/" + session.ID + "/pointer"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without cookie should fail")
	}
	if resp == nil || resp.StatusCode != 403 {
		t.Errorf("response %v, want 403", resp)
	}
}

func TestPointer_PlacesPart(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)

	snap := readSnapshot(t, conn)
	if snap.State != game.StatePlaying || len(snap.Pool) != 10 {
		t.Fatalf("initial snapshot %s with %d pooled parts", snap.State, len(snap.Pool))
	}
	part := snap.Pool[0]
	target, ok := targetFor(snap, part.Type)
	if !ok {
		t.Fatalf("no target for %s", part.Type)
	}

	steps := pointerSteps(part, target)
	sendPointer(t, conn, steps[0])
	held := sendPointer(t, conn, steps[1])
	if held.HeldID != part.ID {
		t.Errorf("held id %d, want %d", held.HeldID, part.ID)
	}
	sendPointer(t, conn, steps[2])
	placed := sendPointer(t, conn, steps[3])
	if placed.PartsPlaced != 1 || placed.Score != 10 || placed.HeldID != 0 {
		t.Errorf("after drop: placed %d score %d held %d", placed.PartsPlaced, placed.Score, placed.HeldID)
	}
	if len(placed.Placed) != 1 || placed.Placed[0].X != target.X || placed.Placed[0].Y != target.Y {
		t.Errorf("placed part %+v should sit on target %+v", placed.Placed, target)
	}
}

func TestPointer_NullCancelsHold(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)

	snap := readSnapshot(t, conn)
	part := snap.Pool[0]
	target, _ := targetFor(snap, part.Type)
	steps := pointerSteps(part, target)
	sendPointer(t, conn, steps[0])
	sendPointer(t, conn, steps[1])
	sendPointer(t, conn, steps[2])

	lost := sendPointer(t, conn, nil)
	if lost.HeldID != 0 || lost.PartsPlaced != 0 {
		t.Errorf("tracking loss: held %d placed %d, want 0/0", lost.HeldID, lost.PartsPlaced)
	}
	// The release that follows must not snap the part.
	after := sendPointer(t, conn, steps[3])
	if after.PartsPlaced != 0 {
		t.Errorf("placed %d after tracking loss, want 0", after.PartsPlaced)
	}
}

func TestPointer_IgnoresMalformedFrames(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)
	readSnapshot(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	snap := sendPointer(t, conn, &PointerMessage{X: 1, Y: 1})
	if snap.State != game.StatePlaying {
		t.Errorf("state %q, want playing", snap.State)
	}
}

func TestPointer_WinPublishesOutcome(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	hub, _ := ts.store.Broadcaster(session.ID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)
	conn := dialPointer(t, ts, session)

	snap := readSnapshot(t, conn)
	var last game.Snapshot
	for _, part := range snap.Pool {
		target, _ := targetFor(snap, part.Type)
		for _, msg := range pointerSteps(part, target) {
			last = sendPointer(t, conn, msg)
		}
	}
	if last.State != game.StateFinished || last.Outcome == nil || !last.Outcome.IsWin {
		t.Fatalf("final snapshot %s outcome %+v, want a win", last.State, last.Outcome)
	}
	if last.Outcome.Score != 100 {
		t.Errorf("score %d, want 100", last.Outcome.Score)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sub:
			if ev == game.EventOutcome {
				return
			}
		case <-deadline:
			t.Fatal("no outcome event after the winning drop")
		}
	}
}

func TestPointer_SessionEndClosesSocket(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)
	readSnapshot(t, conn)

	ts.store.End(session.ID)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("socket should be closed when the session ends")
	} else if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		t.Fatal("socket was not closed before the deadline")
	}
}

func TestPointerMessage_Null(t *testing.T) {
	var msg *PointerMessage
	if err := json.Unmarshal([]byte("null"), &msg); err != nil {
		t.Fatal(err)
	}
	if msg != nil {
		t.Error("null should decode to a nil message")
	}
}

func TestPointer_PipelinedFramesKeepPinchEdges(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)

	snap := readSnapshot(t, conn)
	first, second := snap.Pool[0], snap.Pool[1]
	target, _ := targetFor(snap, first.Type)

	frames := append(pointerSteps(first, target),
		&PointerMessage{X: second.X, Y: second.Y},
		&PointerMessage{X: second.X, Y: second.Y, Pinching: true},
	)
	for _, msg := range frames {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write pointer: %v", err)
		}
	}
	var last game.Snapshot
	for range frames {
		last = readSnapshot(t, conn)
	}
	if last.PartsPlaced != 1 {
		t.Errorf("parts placed %d, want 1", last.PartsPlaced)
	}
	if last.HeldID != second.ID {
		t.Errorf("held id %d, want %d", last.HeldID, second.ID)
	}
}

func TestPointer_OversizedFrameClosesSocket(t *testing.T) {
	ts := newTestServer(t)
	session := ts.login(t, "Alice", "5551234567")
	conn := dialPointer(t, ts, session)
	readSnapshot(t, conn)

	payload := `{"x":1,"y":1,"pinching":false,"pad":"` + strings.Repeat("a", 4*pointerReadLimit) + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("oversized frame should close the socket")
	}
	if session.Closed() {
		t.Error("oversized frame should not end the session")
	}
}
