// Package api provides HTTP handlers for the AutoStream chat API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ashureev/autostream/internal/convo"
	"github.com/ashureev/autostream/internal/session"
	"github.com/ashureev/autostream/internal/store"
)

// Conversation runs one chat turn for a session.
type Conversation interface {
	Chat(ctx context.Context, sessionID, message string) (*convo.TurnResult, error)
}

// Handler provides common handler utilities.
type Handler struct {
	svc      Conversation
	registry *session.Registry
	repo     store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(svc Conversation, registry *session.Registry, repo store.Repository) *Handler {
	return &Handler{
		svc:      svc,
		registry: registry,
		repo:     repo,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
