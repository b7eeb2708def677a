package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// SocketHandler handles WebSocket-based chat sessions. Each connection is
// bound to one session id; frames carry one user message each.
type SocketHandler struct {
	svc           Conversation
	allowedOrigin string
	isDev         bool
}

// NewSocketHandler creates a new WebSocket chat handler.
func NewSocketHandler(svc Conversation, allowedOrigin string, isDev bool) *SocketHandler {
	return &SocketHandler{
		svc:           svc,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// socketFrame is the inbound WebSocket message structure.
type socketFrame struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	slog.Info("WebSocket connection request", "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Tell the client which session it is bound to before the first turn.
	if err := h.writeJSON(ws, map[string]string{"type": "session", "session_id": sessionID}); err != nil {
		slog.Debug("Failed to send session frame", "error", err)
		return
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var frame socketFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if err := h.writeJSON(ws, map[string]string{"error": "invalid_frame"}); err != nil {
				slog.Debug("Failed to send invalid_frame error", "error", err)
				return
			}
			continue
		}

		if frame.Type == "ping" {
			if err := h.writeJSON(ws, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
				return
			}
			continue
		}

		message := strings.TrimSpace(frame.Message)
		if message == "" {
			if err := h.writeJSON(ws, map[string]string{"error": "empty_message"}); err != nil {
				slog.Debug("Failed to send empty_message error", "error", err)
				return
			}
			continue
		}

		result, err := h.svc.Chat(ctx, sessionID, message)
		if err != nil {
			slog.Error("Chat turn failed", "error", err, "session_id", sessionID)
			if err := h.writeJSON(ws, map[string]string{"error": "chat_failed"}); err != nil {
				slog.Debug("Failed to send chat_failed error", "error", err)
				return
			}
			continue
		}

		if err := h.writeJSON(ws, result); err != nil {
			slog.Warn("WebSocket write error", "error", err, "session_id", sessionID)
			return
		}
	}
}

func (h *SocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *SocketHandler) writeJSON(ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(context.Background(), websocket.MessageText, data)
}
