package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"photo-gallery-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PhotoStore is the photo-row persistence surface the pipeline needs
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByGallery(ctx context.Context, galleryID string, includeHidden bool) ([]*models.Photo, error)
	ListFeatured(ctx context.Context) ([]*models.Photo, error)
	CountByGallery(ctx context.Context, galleryID string) (int, error)
	Update(ctx context.Context, id string, patch *models.PhotoPatch) error
	UpdateLocation(ctx context.Context, id, galleryID, originalKey, webKey, thumbnailKey string) error
	Reorder(ctx context.Context, galleryID string, photoIDs []string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PhotoService runs the image derivative pipeline: it turns one uploaded
// buffer into three durable renditions, keeps their storage keys consistent
// across move and delete, and enriches photos with signed URLs.
type PhotoService struct {
	photoRepo PhotoStore
	images    *ImageService
	store     ObjectStore
}

// NewPhotoService creates a new photo service
func NewPhotoService(photoRepo PhotoStore, images *ImageService, store ObjectStore) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		images:    images,
		store:     store,
	}
}

// PhotoWithURLs is a photo enriched with signed retrieval URLs
type PhotoWithURLs struct {
	models.Photo
	URL          string `json:"url"`
	WebURL       string `json:"web_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"tiff": "image/tiff",
	"heif": "image/heic",
}

// Upload ingests one photo: validate, derive the three renditions, extract
// capture metadata, store all three objects concurrently, and only write the
// database row once every upload has succeeded. A failed upload leaves no row;
// already-written sibling objects become unreachable garbage, which is
// accepted over rollback complexity.
func (s *PhotoService) Upload(ctx context.Context, galleryID, originalFilename string, buf []byte) (*models.Photo, error) {
	if !s.images.Validate(buf) {
		return nil, fmt.Errorf("unsupported or malformed image")
	}

	renditions, err := s.images.DeriveRenditions(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	// Best effort; never blocks the upload
	exifData := s.images.ExtractCaptureMetadata(buf)

	photoID := uuid.New().String()
	keys := AllocatePhotoKeys(galleryID, photoID, renditions.Format)
	originalType := contentTypes[renditions.Format]

	uploads := []struct {
		key         string
		data        []byte
		contentType string
	}{
		{keys.Original, renditions.Original.Data, originalType},
		{keys.Web, renditions.Web.Data, "image/jpeg"},
		{keys.Thumbnail, renditions.Thumbnail.Data, "image/jpeg"},
	}

	// The three uploads are independent; run them concurrently and wait for
	// all of them before touching the database.
	var wg sync.WaitGroup
	errs := make([]error, len(uploads))
	for i, u := range uploads {
		wg.Add(1)
		go func(i int, key string, data []byte, contentType string) {
			defer wg.Done()
			errs[i] = s.store.Upload(ctx, key, data, contentType)
		}(i, u.key, u.data, u.contentType)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to store renditions: %w", err)
		}
	}

	sortOrder, err := s.photoRepo.CountByGallery(ctx, galleryID)
	if err != nil {
		sortOrder = 0
	}

	photo := &models.Photo{
		ID:               photoID,
		GalleryID:        galleryID,
		Filename:         fmt.Sprintf("%s.%s", photoID, formatExtensions[renditions.Format]),
		OriginalFilename: originalFilename,
		OriginalKey:      keys.Original,
		WebKey:           keys.Web,
		ThumbnailKey:     keys.Thumbnail,
		Width:            renditions.Original.Width,
		Height:           renditions.Original.Height,
		FileSize:         renditions.Original.Size,
		SortOrder:        sortOrder,
		ExifData:         exifData,
		UploadedAt:       time.Now(),
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	log.Info().
		Str("photo_id", photoID).
		Str("gallery_id", galleryID).
		Int("width", photo.Width).
		Int("height", photo.Height).
		Msg("Photo uploaded")

	return photo, nil
}

// Relocate moves a photo to another gallery: recompute keys under the target,
// copy all three objects, commit the database update, then best-effort delete
// the old objects. A copy failure aborts the move; a cleanup failure after
// commit is logged but never rolls the move back.
func (s *PhotoService) Relocate(ctx context.Context, photoID, targetGalleryID string) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.GalleryID == targetGalleryID {
		return photo, nil
	}

	format := formatFromKey(photo.OriginalKey)
	newKeys := AllocatePhotoKeys(targetGalleryID, photoID, format)

	copies := [][2]string{
		{photo.OriginalKey, newKeys.Original},
		{photo.WebKey, newKeys.Web},
		{photo.ThumbnailKey, newKeys.Thumbnail},
	}
	for _, c := range copies {
		if err := s.store.Copy(ctx, c[0], c[1]); err != nil {
			return nil, fmt.Errorf("failed to copy renditions: %w", err)
		}
	}

	if err := s.photoRepo.UpdateLocation(ctx, photoID, targetGalleryID, newKeys.Original, newKeys.Web, newKeys.Thumbnail); err != nil {
		return nil, err
	}

	// The move is committed; stale objects are cleanup only.
	oldKeys := []string{photo.OriginalKey, photo.WebKey, photo.ThumbnailKey}
	if failed := s.deleteKeys(ctx, oldKeys); failed > 0 {
		log.Warn().
			Str("photo_id", photoID).
			Int("failed", failed).
			Msg("Failed to delete old renditions after move")
	}

	return s.photoRepo.GetByID(ctx, photoID)
}

// RelocateBatch moves several photos to a target gallery. A failure on one
// photo does not stop the rest; the failed IDs are returned.
func (s *PhotoService) RelocateBatch(ctx context.Context, photoIDs []string, targetGalleryID string) (moved []*models.Photo, failed []string) {
	for _, id := range photoIDs {
		photo, err := s.Relocate(ctx, id, targetGalleryID)
		if err != nil {
			log.Error().Err(err).Str("photo_id", id).Msg("Failed to move photo")
			failed = append(failed, id)
			continue
		}
		moved = append(moved, photo)
	}
	return moved, failed
}

// Delete removes the photo row, then best-effort deletes the three stored
// objects. The absent row is the basis of truth for "photo is gone"; storage
// cleanup failure never surfaces to the caller.
func (s *PhotoService) Delete(ctx context.Context, photoID string) error {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}

	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		return err
	}

	s.DeleteRenditions(ctx, photo)
	return nil
}

// DeleteRenditions attempts deletion of all three stored objects
// independently, never short-circuiting on the first failure. Returns how
// many of the three succeeded.
func (s *PhotoService) DeleteRenditions(ctx context.Context, photo *models.Photo) int {
	keys := []string{photo.OriginalKey, photo.WebKey, photo.ThumbnailKey}
	failed := s.deleteKeys(ctx, keys)
	if failed > 0 {
		log.Warn().
			Str("photo_id", photo.ID).
			Int("failed", failed).
			Int("total", len(keys)).
			Msg("Failed to delete some renditions")
	}
	return len(keys) - failed
}

// deleteKeys fans out independent deletes and returns the failure count
func (s *PhotoService) deleteKeys(ctx context.Context, keys []string) int {
	var wg sync.WaitGroup
	errs := make([]error, len(keys))
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			errs[i] = s.store.Delete(ctx, key)
		}(i, key)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			log.Warn().Err(err).Str("key", keys[i]).Msg("Failed to delete object")
			failed++
		}
	}
	return failed
}

// GetByID retrieves a photo by ID
func (s *PhotoService) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	return s.photoRepo.GetByID(ctx, id)
}

// ListByGallery retrieves a gallery's photos in display order
func (s *PhotoService) ListByGallery(ctx context.Context, galleryID string, includeHidden bool) ([]*models.Photo, error) {
	return s.photoRepo.ListByGallery(ctx, galleryID, includeHidden)
}

// ListFeatured retrieves featured photos from public galleries
func (s *PhotoService) ListFeatured(ctx context.Context) ([]*models.Photo, error) {
	return s.photoRepo.ListFeatured(ctx)
}

// Update applies a partial update to a photo
func (s *PhotoService) Update(ctx context.Context, id string, patch *models.PhotoPatch) (*models.Photo, error) {
	if err := s.photoRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.photoRepo.GetByID(ctx, id)
}

// Reorder rewrites the display order of photos within a gallery
func (s *PhotoService) Reorder(ctx context.Context, galleryID string, photoIDs []string) error {
	return s.photoRepo.Reorder(ctx, galleryID, photoIDs)
}

// RecordView increments the photo view counter
func (s *PhotoService) RecordView(ctx context.Context, id string) {
	if err := s.photoRepo.IncrementViews(ctx, id); err != nil {
		log.Warn().Err(err).Str("photo_id", id).Msg("Failed to record photo view")
	}
}

// RecordDownload increments the photo download counter
func (s *PhotoService) RecordDownload(ctx context.Context, id string) {
	if err := s.photoRepo.IncrementDownloads(ctx, id); err != nil {
		log.Warn().Err(err).Str("photo_id", id).Msg("Failed to record photo download")
	}
}

// WithURLs enriches a photo with signed URLs for its three renditions. URL
// generation per key is independent and runs in parallel.
func (s *PhotoService) WithURLs(ctx context.Context, photo *models.Photo) (*PhotoWithURLs, error) {
	keys := []string{photo.OriginalKey, photo.WebKey, photo.ThumbnailKey}
	urls := make([]string, len(keys))

	var wg sync.WaitGroup
	errs := make([]error, len(keys))
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			urls[i], errs[i] = s.store.SignedURL(ctx, key)
		}(i, key)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to sign photo URLs: %w", err)
		}
	}

	return &PhotoWithURLs{
		Photo:        *photo,
		URL:          urls[0],
		WebURL:       urls[1],
		ThumbnailURL: urls[2],
	}, nil
}

// WithURLsBatch enriches a list of photos with signed URLs
func (s *PhotoService) WithURLsBatch(ctx context.Context, photos []*models.Photo) ([]*PhotoWithURLs, error) {
	enriched := make([]*PhotoWithURLs, 0, len(photos))
	for _, photo := range photos {
		p, err := s.WithURLs(ctx, photo)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, p)
	}
	return enriched, nil
}

// ThumbnailURL returns a signed thumbnail URL for one photo, used for gallery
// cover images
func (s *PhotoService) ThumbnailURL(ctx context.Context, photo *models.Photo) (string, error) {
	return s.store.SignedURL(ctx, photo.ThumbnailKey)
}

// formatFromKey recovers the original's container format from its storage key
// extension
func formatFromKey(key string) string {
	for format, ext := range formatExtensions {
		if len(key) > len(ext) && key[len(key)-len(ext)-1:] == "."+ext {
			return format
		}
	}
	return "jpeg"
}
