package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxChatBodyBytes bounds the chat request body. A single user message is
// never anywhere near this large.
const maxChatBodyBytes = 64 << 10

// maxMessageLen bounds the user message itself.
const maxMessageLen = 4000

// ChatHandler handles conversation endpoints.
type ChatHandler struct {
	*Handler
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(base *Handler) *ChatHandler {
	return &ChatHandler{Handler: base}
}

// RegisterRoutes registers conversation routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/session/{id}", h.GetSession)
		r.Delete("/session/{id}", h.DeleteSession)
		r.Get("/stats", h.GetStats)
		r.Get("/leads", h.ListLeads)
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat processes one user message and returns the assistant reply with the
// public session state. Engine failures inside the turn degrade to a
// fallback reply and still return 200.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLen {
		Error(w, http.StatusBadRequest, "message too long")
		return
	}

	result, err := h.svc.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "session_id", req.SessionID)
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	JSON(w, http.StatusOK, result)
}

// GetSession returns a summary of a live session.
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := h.registry.Get(id)
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id":         rec.SessionID,
		"conversation_state": rec.Phase,
		"current_intent":     rec.Intent,
		"message_count":      len(rec.Messages),
		"last_user_message":  rec.LastUserMessage(),
		"turn_count":         rec.TurnCount,
		"name":               rec.Name,
		"email":              rec.Email,
		"platform":           rec.Platform,
		"selected_plan":      rec.SelectedPlan,
		"channel_link":       rec.ChannelLink,
		"lead_captured":      rec.LeadCaptured,
		"created_at":         rec.CreatedAt,
		"last_access":        rec.LastAccess,
	})
}

// DeleteSession removes a session. Deleting a missing session succeeds.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.registry.Delete(id)
	JSON(w, http.StatusOK, map[string]string{"status": "deleted", "session_id": id})
}

// GetStats returns registry counters and the captured lead count.
func (h *ChatHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.registry.GetStats()

	leads, err := h.repo.CountLeads(r.Context())
	if err != nil {
		slog.Error("Failed to count leads", "error", err)
		Error(w, http.StatusInternalServerError, "failed to read lead count")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"active_sessions": stats.Count,
		"max_sessions":    stats.Capacity,
		"oldest_session":  stats.OldestSession,
		"leads_captured":  leads,
	})
}

// ListLeads returns captured leads, newest first.
func (h *ChatHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			Error(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	leads, err := h.repo.ListLeads(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list leads", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"count": len(leads),
	})
}

// Root returns basic service information.
func (h *ChatHandler) Root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"service": "AutoStream Sales Assistant API",
		"status":  "running",
	})
}
