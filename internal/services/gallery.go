package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Lowercase alphanumeric segments joined by single hyphens, no leading or
// trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether a slug satisfies the URL format rules
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// GalleryService handles gallery-related business logic
type GalleryService struct {
	galleryRepo *repository.GalleryRepository
	photoRepo   *repository.PhotoRepository
	access      *AccessService
}

// NewGalleryService creates a new gallery service
func NewGalleryService(
	galleryRepo *repository.GalleryRepository,
	photoRepo *repository.PhotoRepository,
	access *AccessService,
) *GalleryService {
	return &GalleryService{
		galleryRepo: galleryRepo,
		photoRepo:   photoRepo,
		access:      access,
	}
}

// CreateGalleryRequest represents a request to create a gallery
type CreateGalleryRequest struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	Password    string  `json:"password,omitempty"`
}

// Create creates a new gallery. Private galleries must carry a password; the
// hash is mandatory at creation. Public galleries never store one.
func (s *GalleryService) Create(ctx context.Context, req *CreateGalleryRequest) (*models.Gallery, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !ValidSlug(req.Slug) {
		return nil, fmt.Errorf("invalid slug format")
	}

	exists, err := s.galleryRepo.SlugExists(ctx, req.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("slug is already taken")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	var passwordHash *string
	if !isPublic {
		if req.Password == "" {
			return nil, fmt.Errorf("private gallery requires a password")
		}
		hash, err := s.access.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	now := time.Now()
	gallery := &models.Gallery{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		IsPublic:     isPublic,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.galleryRepo.Create(ctx, gallery); err != nil {
		return nil, err
	}

	return gallery, nil
}

// Update applies a partial update to a gallery. Flipping a gallery private
// requires a password unless one is already set; flipping it public clears
// the stored hash.
func (s *GalleryService) Update(ctx context.Context, id string, patch *models.GalleryPatch) (*models.Gallery, error) {
	gallery, err := s.galleryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil && *patch.Slug != gallery.Slug {
		if !ValidSlug(*patch.Slug) {
			return nil, fmt.Errorf("invalid slug format")
		}
		exists, err := s.galleryRepo.SlugExists(ctx, *patch.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("slug is already taken")
		}
	}

	willBePublic := gallery.IsPublic
	if patch.IsPublic != nil {
		willBePublic = *patch.IsPublic
	}

	var passwordHash *string
	clearPassword := false
	switch {
	case willBePublic:
		// Public galleries never carry a password hash
		clearPassword = gallery.PasswordHash != nil
	case patch.Password != nil && *patch.Password != "":
		hash, err := s.access.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	case gallery.PasswordHash == nil:
		return nil, fmt.Errorf("private gallery requires a password")
	}

	if err := s.galleryRepo.Update(ctx, id, patch, passwordHash, clearPassword); err != nil {
		return nil, err
	}

	return s.galleryRepo.GetByID(ctx, id)
}

// GetBySlug retrieves a gallery by slug
func (s *GalleryService) GetBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	return s.galleryRepo.GetBySlug(ctx, slug)
}

// GetByID retrieves a gallery by ID
func (s *GalleryService) GetByID(ctx context.Context, id string) (*models.Gallery, error) {
	return s.galleryRepo.GetByID(ctx, id)
}

// ListPublic retrieves all public galleries
func (s *GalleryService) ListPublic(ctx context.Context) ([]*models.Gallery, error) {
	return s.galleryRepo.ListPublic(ctx)
}

// ListAll retrieves all galleries for the admin console
func (s *GalleryService) ListAll(ctx context.Context) ([]*models.Gallery, error) {
	return s.galleryRepo.ListAll(ctx)
}

// Stats summarizes site activity for the admin console
type Stats struct {
	Galleries    int `json:"galleries"`
	Photos       int `json:"photos"`
	GalleryViews int `json:"gallery_views"`
	PhotoViews   int `json:"photo_views"`
	Downloads    int `json:"downloads"`
}

// Stats aggregates gallery and photo counters
func (s *GalleryService) Stats(ctx context.Context) (*Stats, error) {
	galleries, galleryViews, err := s.galleryRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	photos, photoViews, downloads, err := s.photoRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Galleries:    galleries,
		Photos:       photos,
		GalleryViews: galleryViews,
		PhotoViews:   photoViews,
		Downloads:    downloads,
	}, nil
}

// RecordView increments the gallery view counter
func (s *GalleryService) RecordView(ctx context.Context, id string) {
	if err := s.galleryRepo.IncrementViews(ctx, id); err != nil {
		log.Warn().Err(err).Str("gallery_id", id).Msg("Failed to record gallery view")
	}
}

// SetCoverPhoto assigns a gallery's cover photo after checking the photo
// belongs to the gallery
func (s *GalleryService) SetCoverPhoto(ctx context.Context, galleryID string, photoID *string) error {
	if photoID != nil {
		photo, err := s.photoRepo.GetByID(ctx, *photoID)
		if err != nil {
			return err
		}
		if photo.GalleryID != galleryID {
			return fmt.Errorf("photo does not belong to this gallery")
		}
	}
	return s.galleryRepo.SetCoverPhoto(ctx, galleryID, photoID)
}

// Delete removes a gallery and its photo rows. Object-store cleanup is the
// caller's best-effort follow-up; the database delete is authoritative.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	return s.galleryRepo.Delete(ctx, id)
}

// Unlock verifies a private gallery's password and issues an access token.
// The returned ok is false for every failure mode: wrong password, no
// password set, or a public gallery that needs no unlocking.
func (s *GalleryService) Unlock(ctx context.Context, slug, password string) (string, bool) {
	gallery, err := s.galleryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", false
	}
	if gallery.IsPublic {
		return "", false
	}
	if !s.access.VerifyGalleryPassword(gallery, password) {
		return "", false
	}

	token, err := s.access.IssueAccessToken(gallery.ID, gallery.Slug)
	if err != nil {
		log.Error().Err(err).Str("gallery_id", gallery.ID).Msg("Failed to issue access token")
		return "", false
	}
	return token, true
}
