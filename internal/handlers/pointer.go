package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"snowman/internal/game"
)

// PointerMessage is one client frame on the pointer socket. The client sends
// JSON null when hand tracking is lost.
type PointerMessage struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pinching bool    `json:"pinching"`
}

// pointerReadLimit caps a client frame; a pointer frame is well under 100 bytes.
const pointerReadLimit = 512

type PointerConfig struct {
	Logger *log.Logger
}

// PointerHandler feeds pointer samples from a websocket into a session and
// answers every frame with the session snapshot.
type PointerHandler struct {
	store    *game.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewPointerHandler(store *game.Store, cfg PointerConfig) *PointerHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &PointerHandler{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *PointerHandler) RegisterStreams(r chi.Router) {
	r.Get("/session/{id}/pointer", h.Handle)
}

func (h *PointerHandler) Handle(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupOwnedSession(h.store, w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("pointer upgrade failed session=%s err=%v", session.ID, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(pointerReadLimit)

	// Ending the session closes the socket, which unblocks the read loop.
	detach, err := session.AttachPointer(func() { _ = conn.Close() })
	if err != nil {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended")
		_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		return
	}
	defer detach()
	defer h.trackingLost(session)

	if !h.writeSnapshot(conn, session) {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg *PointerMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed pointer frame session=%s err=%v", session.ID, err)
			continue
		}
		var sample *game.PointerSample
		if msg != nil {
			sample = &game.PointerSample{
				Position: game.Point{X: msg.X, Y: msg.Y},
				Pinching: msg.Pinching,
			}
		}

		action, err := session.HandlePointer(sample, time.Now().UTC())
		if errors.Is(err, game.ErrClosed) {
			return
		}
		if action == game.ActionPlace {
			h.store.Publish(session.ID, game.EventHUD)
			if session.State() == game.StateFinished {
				h.store.Publish(session.ID, game.EventOutcome)
				h.store.WakeClockLoop(session.ID)
			}
		}
		if !h.writeSnapshot(conn, session) {
			return
		}
	}
}

// trackingLost drops whatever the departing pointer source was holding.
func (h *PointerHandler) trackingLost(session *game.Session) {
	_, _ = session.HandlePointer(nil, time.Now().UTC())
}

func (h *PointerHandler) writeSnapshot(conn *websocket.Conn, session *game.Session) bool {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		h.logger.Printf("failed to marshal snapshot session=%s err=%v", session.ID, err)
		return true
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}
