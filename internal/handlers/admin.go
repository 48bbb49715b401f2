package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles the admin console HTTP requests: gallery CRUD, photo
// upload and curation, site settings
type AdminHandler struct {
	galleryService *services.GalleryService
	photoService   *services.PhotoService
	settingsRepo   *repository.SettingsRepository
	maxUploadSize  int64
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	galleryService *services.GalleryService,
	photoService *services.PhotoService,
	settingsRepo *repository.SettingsRepository,
	maxUploadSize int64,
) *AdminHandler {
	return &AdminHandler{
		galleryService: galleryService,
		photoService:   photoService,
		settingsRepo:   settingsRepo,
		maxUploadSize:  maxUploadSize,
	}
}

// ListGalleries handles GET /api/v1/admin/galleries
func (h *AdminHandler) ListGalleries(w http.ResponseWriter, r *http.Request) {
	galleries, err := h.galleryService.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list galleries")
		respondError(w, "Failed to fetch galleries", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, galleries)
}

// CreateGallery handles POST /api/v1/admin/galleries
func (h *AdminHandler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	var req services.CreateGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gallery, err := h.galleryService.Create(r.Context(), &req)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("gallery_id", gallery.ID).Str("slug", gallery.Slug).Msg("Gallery created")
	respondJSON(w, http.StatusCreated, gallery)
}

// UpdateGallery handles PATCH /api/v1/admin/galleries/{id}
func (h *AdminHandler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	galleryID := chi.URLParam(r, "id")

	var patch models.GalleryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gallery, err := h.galleryService.Update(r.Context(), galleryID, &patch)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, gallery)
}

// DeleteGallery handles DELETE /api/v1/admin/galleries/{id}. The database
// delete is authoritative; object-store cleanup afterwards is best effort.
func (h *AdminHandler) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	galleryID := chi.URLParam(r, "id")

	photos, err := h.photoService.ListByGallery(ctx, galleryID, true)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", galleryID).Msg("Failed to list photos for delete")
		respondError(w, "Failed to delete gallery", http.StatusInternalServerError)
		return
	}

	if err := h.galleryService.Delete(ctx, galleryID); err != nil {
		respondError(w, "Gallery not found", http.StatusNotFound)
		return
	}

	for _, photo := range photos {
		h.photoService.DeleteRenditions(ctx, photo)
	}

	log.Info().
		Str("gallery_id", galleryID).
		Int("photos", len(photos)).
		Msg("Gallery deleted")

	w.WriteHeader(http.StatusNoContent)
}

// ListGalleryPhotos handles GET /api/v1/admin/galleries/{id}/photos.
// Hidden photos are included; curation needs the full set.
func (h *AdminHandler) ListGalleryPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	galleryID := chi.URLParam(r, "id")

	photos, err := h.photoService.ListByGallery(ctx, galleryID, true)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", galleryID).Msg("Failed to list gallery photos")
		respondError(w, "Failed to fetch photos", http.StatusInternalServerError)
		return
	}

	enriched, err := h.photoService.WithURLsBatch(ctx, photos)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", galleryID).Msg("Failed to sign photo URLs")
		respondError(w, "Failed to fetch photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, enriched)
}

// SetCoverPhoto handles PUT /api/v1/admin/galleries/{id}/cover
func (h *AdminHandler) SetCoverPhoto(w http.ResponseWriter, r *http.Request) {
	galleryID := chi.URLParam(r, "id")

	var req struct {
		PhotoID *string `json:"photo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.galleryService.SetCoverPhoto(r.Context(), galleryID, req.PhotoID); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles POST /api/v1/admin/galleries/{id}/photos
func (h *AdminHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	galleryID := chi.URLParam(r, "id")

	if _, err := h.galleryService.GetByID(ctx, galleryID); err != nil {
		respondError(w, "Gallery not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.Upload(ctx, galleryID, header.Filename, buf)
	if err != nil {
		log.Error().
			Err(err).
			Str("gallery_id", galleryID).
			Str("filename", header.Filename).
			Msg("Failed to upload photo")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, photo)
}

// UpdatePhoto handles PATCH /api/v1/admin/photos/{id}
func (h *AdminHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "id")

	var patch models.PhotoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	photo, err := h.photoService.Update(r.Context(), photoID, &patch)
	if err != nil {
		respondError(w, "Photo not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, photo)
}

// MovePhotos handles POST /api/v1/admin/photos/move
func (h *AdminHandler) MovePhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		PhotoIDs        []string `json:"photo_ids"`
		TargetGalleryID string   `json:"target_gallery_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.PhotoIDs) == 0 || req.TargetGalleryID == "" {
		respondError(w, "photo_ids and target_gallery_id are required", http.StatusBadRequest)
		return
	}

	if _, err := h.galleryService.GetByID(ctx, req.TargetGalleryID); err != nil {
		respondError(w, "Target gallery not found", http.StatusNotFound)
		return
	}

	moved, failed := h.photoService.RelocateBatch(ctx, req.PhotoIDs, req.TargetGalleryID)

	log.Info().
		Str("target_gallery_id", req.TargetGalleryID).
		Int("moved", len(moved)).
		Int("failed", len(failed)).
		Msg("Photos moved")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"moved":  moved,
		"failed": failed,
	})
}

// ReorderPhotos handles PUT /api/v1/admin/galleries/{id}/order
func (h *AdminHandler) ReorderPhotos(w http.ResponseWriter, r *http.Request) {
	galleryID := chi.URLParam(r, "id")

	var req struct {
		PhotoIDs []string `json:"photo_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.PhotoIDs) == 0 {
		respondError(w, "photo_ids is required", http.StatusBadRequest)
		return
	}

	if err := h.photoService.Reorder(r.Context(), galleryID, req.PhotoIDs); err != nil {
		log.Error().Err(err).Str("gallery_id", galleryID).Msg("Failed to reorder photos")
		respondError(w, "Failed to reorder photos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePhoto handles DELETE /api/v1/admin/photos/{id}
func (h *AdminHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "id")

	if err := h.photoService.Delete(r.Context(), photoID); err != nil {
		respondError(w, "Photo not found", http.StatusNotFound)
		return
	}

	log.Info().Str("photo_id", photoID).Msg("Photo deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.galleryService.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get stats")
		respondError(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetSettings handles GET /api/v1/admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get settings")
		respondError(w, "Failed to fetch settings", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/admin/settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var settings map[string]string
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for key, value := range settings {
		if err := h.settingsRepo.Upsert(ctx, key, value); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to update setting")
			respondError(w, "Failed to update settings", http.StatusInternalServerError)
			return
		}
	}

	updated, err := h.settingsRepo.GetAll(ctx)
	if err != nil {
		respondError(w, "Failed to fetch settings", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
