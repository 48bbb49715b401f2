package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles admin authentication HTTP requests
type AuthHandler struct {
	userRepo      *repository.UserRepository
	accessService *services.AccessService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo *repository.UserRepository, accessService *services.AccessService) *AuthHandler {
	return &AuthHandler{
		userRepo:      userRepo,
		accessService: accessService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || !h.accessService.VerifyUserPassword(user, req.Password) {
		respondError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.accessService.IssueAdminToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue admin token")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Admin logged in")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		respondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}
