package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GalleryHandler handles public gallery HTTP requests
type GalleryHandler struct {
	galleryService *services.GalleryService
	photoService   *services.PhotoService
	accessService  *services.AccessService
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(
	galleryService *services.GalleryService,
	photoService *services.PhotoService,
	accessService *services.AccessService,
) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		photoService:   photoService,
		accessService:  accessService,
	}
}

// galleryView is the public shape of a gallery; the internal identifier is
// withheld for private galleries until a valid access token is presented.
type galleryView struct {
	ID               string  `json:"id,omitempty"`
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	Description      *string `json:"description,omitempty"`
	IsPublic         bool    `json:"is_public"`
	RequiresPassword bool    `json:"requires_password,omitempty"`
	ViewCount        int     `json:"view_count,omitempty"`
	CoverURL         string  `json:"cover_url,omitempty"`
}

func publicGalleryView(g *models.Gallery, coverURL string) galleryView {
	return galleryView{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		IsPublic:    g.IsPublic,
		ViewCount:   g.ViewCount,
		CoverURL:    coverURL,
	}
}

func lockedGalleryView(g *models.Gallery) galleryView {
	return galleryView{
		Title:            g.Title,
		Slug:             g.Slug,
		IsPublic:         false,
		RequiresPassword: true,
	}
}

// ListGalleries handles GET /api/v1/galleries
func (h *GalleryHandler) ListGalleries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	galleries, err := h.galleryService.ListPublic(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list galleries")
		respondError(w, "Failed to fetch galleries", http.StatusInternalServerError)
		return
	}

	views := make([]galleryView, 0, len(galleries))
	for _, g := range galleries {
		views = append(views, publicGalleryView(g, h.coverURL(r, g)))
	}

	respondJSON(w, http.StatusOK, views)
}

// coverURL returns a signed thumbnail URL for the gallery's cover photo, or
// empty when no cover is set or signing fails
func (h *GalleryHandler) coverURL(r *http.Request, g *models.Gallery) string {
	if g.CoverPhotoID == nil {
		return ""
	}
	photo, err := h.photoService.GetByID(r.Context(), *g.CoverPhotoID)
	if err != nil {
		return ""
	}
	url, err := h.photoService.ThumbnailURL(r.Context(), photo)
	if err != nil {
		log.Warn().Err(err).Str("gallery_id", g.ID).Msg("Failed to sign cover URL")
		return ""
	}
	return url
}

// GetGallery handles GET /api/v1/galleries/{slug}
func (h *GalleryHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	gallery, err := h.galleryService.GetBySlug(ctx, slug)
	if err != nil {
		respondError(w, "Gallery not found", http.StatusNotFound)
		return
	}

	if !gallery.IsPublic {
		token := middleware.BearerToken(r)
		if !h.accessService.AuthorizeGalleryAccess(token, gallery) {
			// Limited view only; no internal identifier before unlock
			respondJSON(w, http.StatusOK, lockedGalleryView(gallery))
			return
		}
	}

	h.galleryService.RecordView(ctx, gallery.ID)
	respondJSON(w, http.StatusOK, publicGalleryView(gallery, h.coverURL(r, gallery)))
}

// GetGalleryPhotos handles GET /api/v1/galleries/{slug}/photos
func (h *GalleryHandler) GetGalleryPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	gallery, err := h.galleryService.GetBySlug(ctx, slug)
	if err != nil {
		respondError(w, "Gallery not found", http.StatusNotFound)
		return
	}

	token := middleware.BearerToken(r)
	if !h.accessService.AuthorizeGalleryAccess(token, gallery) {
		respondForbidden(w)
		return
	}

	photos, err := h.photoService.ListByGallery(ctx, gallery.ID, false)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", gallery.ID).Msg("Failed to list gallery photos")
		respondError(w, "Failed to fetch photos", http.StatusInternalServerError)
		return
	}

	enriched, err := h.photoService.WithURLsBatch(ctx, photos)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", gallery.ID).Msg("Failed to sign photo URLs")
		respondError(w, "Failed to fetch photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, enriched)
}

// UnlockGallery handles POST /api/v1/galleries/{slug}/unlock
func (h *GalleryHandler) UnlockGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, ok := h.galleryService.Unlock(ctx, slug, req.Password)
	if !ok {
		respondForbidden(w)
		return
	}

	log.Info().Str("slug", slug).Msg("Gallery unlocked")
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
