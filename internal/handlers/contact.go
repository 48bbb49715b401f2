package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"photo-gallery-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxContactNameLength    = 100
	maxContactEmailLength   = 254
	maxContactMessageLength = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactStore is the persistence surface for contact messages
type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	ListAll(ctx context.Context) ([]*models.ContactMessage, error)
}

// ContactHandler handles contact form submissions. Messages are stored for
// the admin console; no mail is sent.
type ContactHandler struct {
	store ContactStore
}

// NewContactHandler creates a new contact handler
func NewContactHandler(store ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

// Submit handles POST /api/v1/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, "Name, email, and message are required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > maxContactNameLength {
		respondError(w, "Name must be 100 characters or less", http.StatusBadRequest)
		return
	}
	if len(req.Email) > maxContactEmailLength {
		respondError(w, "Email must be 254 characters or less", http.StatusBadRequest)
		return
	}
	if len(req.Message) > maxContactMessageLength {
		respondError(w, "Message must be 5000 characters or less", http.StatusBadRequest)
		return
	}
	if !emailPattern.MatchString(req.Email) {
		respondError(w, "Invalid email address", http.StatusBadRequest)
		return
	}

	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}
	if err := h.store.Create(r.Context(), msg); err != nil {
		log.Error().Err(err).Msg("Failed to store contact message")
		respondError(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	log.Info().Str("message_id", msg.ID).Msg("Contact message received")
	respondJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

// ListMessages handles GET /api/v1/admin/messages
func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list contact messages")
		respondError(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
