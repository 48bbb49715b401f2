package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"photo-gallery-backend/internal/config"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPhotoStore serves a fixed photo list
type stubPhotoStore struct {
	photos []*models.Photo
}

func (s *stubPhotoStore) Create(ctx context.Context, photo *models.Photo) error { return nil }

func (s *stubPhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	for _, p := range s.photos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("photo not found")
}

func (s *stubPhotoStore) ListByGallery(ctx context.Context, galleryID string, includeHidden bool) ([]*models.Photo, error) {
	var out []*models.Photo
	for _, p := range s.photos {
		if p.GalleryID == galleryID && (includeHidden || !p.IsHidden) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPhotoStore) ListFeatured(ctx context.Context) ([]*models.Photo, error)     { return nil, nil }
func (s *stubPhotoStore) CountByGallery(ctx context.Context, galleryID string) (int, error) {
	return len(s.photos), nil
}
func (s *stubPhotoStore) Update(ctx context.Context, id string, patch *models.PhotoPatch) error {
	return nil
}
func (s *stubPhotoStore) UpdateLocation(ctx context.Context, id, galleryID, originalKey, webKey, thumbnailKey string) error {
	return nil
}
func (s *stubPhotoStore) Reorder(ctx context.Context, galleryID string, photoIDs []string) error {
	return nil
}
func (s *stubPhotoStore) IncrementViews(ctx context.Context, id string) error     { return nil }
func (s *stubPhotoStore) IncrementDownloads(ctx context.Context, id string) error { return nil }
func (s *stubPhotoStore) Delete(ctx context.Context, id string) error             { return nil }

// stubObjectStore signs every key without touching storage
type stubObjectStore struct{}

func (s *stubObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (s *stubObjectStore) Delete(ctx context.Context, key string) error               { return nil }
func (s *stubObjectStore) Copy(ctx context.Context, sourceKey, destKey string) error  { return nil }
func (s *stubObjectStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://signed.example.com/" + key, nil
}

func TestListGalleryPhotos_IncludesHidden(t *testing.T) {
	store := &stubPhotoStore{photos: []*models.Photo{
		{ID: "p1", GalleryID: "g1", OriginalKey: "galleries/g1/p1/original.jpg", WebKey: "galleries/g1/p1/web.jpg", ThumbnailKey: "galleries/g1/p1/thumb.jpg"},
		{ID: "p2", GalleryID: "g1", IsHidden: true, OriginalKey: "galleries/g1/p2/original.jpg", WebKey: "galleries/g1/p2/web.jpg", ThumbnailKey: "galleries/g1/p2/thumb.jpg"},
		{ID: "p3", GalleryID: "g2", OriginalKey: "galleries/g2/p3/original.jpg", WebKey: "galleries/g2/p3/web.jpg", ThumbnailKey: "galleries/g2/p3/thumb.jpg"},
	}}
	photoService := services.NewPhotoService(store, services.NewImageService(config.UploadConfig{}), &stubObjectStore{})
	handler := NewAdminHandler(nil, photoService, nil, 0)

	router := chi.NewRouter()
	router.Get("/admin/galleries/{id}/photos", handler.ListGalleryPhotos)

	req := httptest.NewRequest(http.MethodGet, "/admin/galleries/g1/photos", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var photos []struct {
		ID           string `json:"id"`
		IsHidden     bool   `json:"is_hidden"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 2)

	// The hidden photo is present; curation needs the full set
	assert.Equal(t, "p1", photos[0].ID)
	assert.Equal(t, "p2", photos[1].ID)
	assert.True(t, photos[1].IsHidden)
	assert.Contains(t, photos[0].ThumbnailURL, "galleries/g1/p1/thumb.jpg")
}
