package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	pingInterval = 25 * time.Second
	writeTimeout = 10 * time.Second
)

// Authenticator resolves the user behind a connection request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// ConnectionRecorder is told about every accepted connection.
type ConnectionRecorder interface {
	RecordConnection(ctx context.Context, userID string)
}

type WSHandler struct {
	hub                *Hub
	auth               Authenticator
	activity           ConnectionRecorder
	insecureSkipVerify bool
	pingInterval       time.Duration
}

func NewWSHandler(hub *Hub, auth Authenticator, activity ConnectionRecorder, insecureSkipVerify bool) *WSHandler {
	return &WSHandler{
		hub:                hub,
		auth:               auth,
		activity:           activity,
		insecureSkipVerify: insecureSkipVerify,
		pingInterval:       pingInterval,
	}
}

// ServeHTTP authenticates the handshake, upgrades the connection and
// serves it until the peer goes away.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": err.Error()})
		return
	}

	// Browsers on the dev server connect cross-origin, which Accept
	// refuses unless origin verification is skipped.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: h.insecureSkipVerify})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	client := h.hub.Register(userID)
	defer h.hub.Unregister(client)

	if h.activity != nil {
		h.activity.RecordConnection(r.Context(), userID)
	}
	slog.Debug("socket connected", "user", userID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, cancel, conn, client)
	h.readLoop(ctx, conn, client)

	slog.Debug("socket disconnected", "user", userID)
	conn.Close(websocket.StatusNormalClosure, "bye")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *Client) {
	for {
		var f Frame
		// wsjson closes the connection itself on a malformed frame.
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return
		}

		switch f.Type {
		case FrameJoin:
			if ref, ok := f.ref(); ok {
				h.hub.Join(ctx, client, ref)
			}
		case FrameLeave:
			if ref, ok := f.ref(); ok {
				h.hub.Leave(client, ref)
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, client *Client) {
	defer cancel()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case ev := <-client.Send:
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancelWrite()
			if err != nil {
				slog.Debug("socket write failed", "user", client.UserID, "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancelPing()
			if err != nil {
				return
			}
		}
	}
}
