package handlers

import (
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PhotoHandler handles public photo HTTP requests
type PhotoHandler struct {
	photoService   *services.PhotoService
	galleryService *services.GalleryService
	accessService  *services.AccessService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(
	photoService *services.PhotoService,
	galleryService *services.GalleryService,
	accessService *services.AccessService,
) *PhotoHandler {
	return &PhotoHandler{
		photoService:   photoService,
		galleryService: galleryService,
		accessService:  accessService,
	}
}

// authorize loads a photo and checks the caller may see it via its gallery's
// visibility and, for private galleries, the presented access token
func (h *PhotoHandler) authorize(r *http.Request, photoID string) (*models.Photo, bool) {
	ctx := r.Context()

	photo, err := h.photoService.GetByID(ctx, photoID)
	if err != nil {
		return nil, false
	}

	gallery, err := h.galleryService.GetByID(ctx, photo.GalleryID)
	if err != nil {
		return nil, false
	}

	if !h.accessService.AuthorizeGalleryAccess(middleware.BearerToken(r), gallery) {
		return nil, false
	}
	return photo, true
}

// GetPhoto handles GET /api/v1/photos/{id}
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	photoID := chi.URLParam(r, "id")

	photo, ok := h.authorize(r, photoID)
	if !ok {
		respondForbidden(w)
		return
	}

	h.photoService.RecordView(ctx, photo.ID)

	enriched, err := h.photoService.WithURLs(ctx, photo)
	if err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID).Msg("Failed to sign photo URLs")
		respondError(w, "Failed to fetch photo", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, enriched)
}

// DownloadPhoto handles GET /api/v1/photos/{id}/download
func (h *PhotoHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	photoID := chi.URLParam(r, "id")

	photo, ok := h.authorize(r, photoID)
	if !ok {
		respondForbidden(w)
		return
	}

	h.photoService.RecordDownload(ctx, photo.ID)

	enriched, err := h.photoService.WithURLs(ctx, photo)
	if err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID).Msg("Failed to sign download URL")
		respondError(w, "Failed to download photo", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"filename":     photo.OriginalFilename,
		"download_url": enriched.URL,
	})
}

// GetFeatured handles GET /api/v1/featured
func (h *PhotoHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photos, err := h.photoService.ListFeatured(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list featured photos")
		respondError(w, "Failed to fetch featured photos", http.StatusInternalServerError)
		return
	}

	enriched, err := h.photoService.WithURLsBatch(ctx, photos)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign featured photo URLs")
		respondError(w, "Failed to fetch featured photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, enriched)
}
