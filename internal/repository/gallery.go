package repository

import (
	"context"
	"fmt"
	"strings"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GalleryRepository handles database operations for galleries
type GalleryRepository struct {
	db *pgxpool.Pool
}

// NewGalleryRepository creates a new gallery repository
func NewGalleryRepository(db *pgxpool.Pool) *GalleryRepository {
	return &GalleryRepository{db: db}
}

const galleryColumns = `id, title, slug, description, cover_photo_id, is_public, password_hash, view_count, created_at, updated_at`

func scanGallery(row pgx.Row) (*models.Gallery, error) {
	var g models.Gallery
	err := row.Scan(
		&g.ID, &g.Title, &g.Slug, &g.Description, &g.CoverPhotoID,
		&g.IsPublic, &g.PasswordHash, &g.ViewCount, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create creates a new gallery
func (r *GalleryRepository) Create(ctx context.Context, gallery *models.Gallery) error {
	query := `
		INSERT INTO galleries (id, title, slug, description, cover_photo_id, is_public, password_hash, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		gallery.ID, gallery.Title, gallery.Slug, gallery.Description, gallery.CoverPhotoID,
		gallery.IsPublic, gallery.PasswordHash, gallery.ViewCount, gallery.CreatedAt, gallery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create gallery: %w", err)
	}
	return nil
}

// GetByID retrieves a gallery by ID
func (r *GalleryRepository) GetByID(ctx context.Context, id string) (*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE id = $1`
	gallery, err := scanGallery(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("gallery not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get gallery: %w", err)
	}
	return gallery, nil
}

// GetBySlug retrieves a gallery by slug (case-sensitive exact match)
func (r *GalleryRepository) GetBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE slug = $1`
	gallery, err := scanGallery(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("gallery not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get gallery by slug: %w", err)
	}
	return gallery, nil
}

// SlugExists checks if a slug is already taken
func (r *GalleryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM galleries WHERE slug = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}
	return exists, nil
}

// ListPublic retrieves all public galleries, newest first
func (r *GalleryRepository) ListPublic(ctx context.Context) ([]*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE is_public = true ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListAll retrieves all galleries for the admin console, newest first
func (r *GalleryRepository) ListAll(ctx context.Context) ([]*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *GalleryRepository) list(ctx context.Context, query string) ([]*models.Gallery, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list galleries: %w", err)
	}
	defer rows.Close()

	var galleries []*models.Gallery
	for rows.Next() {
		gallery, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery: %w", err)
		}
		galleries = append(galleries, gallery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating galleries: %w", err)
	}

	return galleries, nil
}

// galleryUpdate is one column assignment produced from a patch field
type galleryUpdate struct {
	column string
	value  interface{}
}

// Update applies a partial update. Only fields present in the patch are
// written; the column set is closed and never derived from caller input.
func (r *GalleryRepository) Update(ctx context.Context, id string, patch *models.GalleryPatch, passwordHash *string, clearPassword bool) error {
	var updates []galleryUpdate

	if patch.Title != nil {
		updates = append(updates, galleryUpdate{"title", *patch.Title})
	}
	if patch.Slug != nil {
		updates = append(updates, galleryUpdate{"slug", *patch.Slug})
	}
	if patch.Description != nil {
		updates = append(updates, galleryUpdate{"description", *patch.Description})
	}
	if patch.IsPublic != nil {
		updates = append(updates, galleryUpdate{"is_public", *patch.IsPublic})
	}
	if passwordHash != nil {
		updates = append(updates, galleryUpdate{"password_hash", *passwordHash})
	} else if clearPassword {
		updates = append(updates, galleryUpdate{"password_hash", nil})
	}

	if len(updates) == 0 {
		return nil
	}

	var sets []string
	var args []interface{}
	for i, u := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", u.column, i+1))
		args = append(args, u.value)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE galleries SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update gallery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery not found")
	}
	return nil
}

// SetCoverPhoto assigns the cover photo for a gallery
func (r *GalleryRepository) SetCoverPhoto(ctx context.Context, galleryID string, photoID *string) error {
	query := `UPDATE galleries SET cover_photo_id = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, photoID, galleryID)
	if err != nil {
		return fmt.Errorf("failed to set cover photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery not found")
	}
	return nil
}

// Totals returns gallery counts for the admin stats summary
func (r *GalleryRepository) Totals(ctx context.Context) (galleries, views int, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(view_count), 0) FROM galleries`
	if err := r.db.QueryRow(ctx, query).Scan(&galleries, &views); err != nil {
		return 0, 0, fmt.Errorf("failed to get gallery totals: %w", err)
	}
	return galleries, views, nil
}

// IncrementViews increments the gallery view counter
func (r *GalleryRepository) IncrementViews(ctx context.Context, id string) error {
	query := `UPDATE galleries SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment gallery views: %w", err)
	}
	return nil
}

// Delete removes a gallery and its photo rows
func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE gallery_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete gallery photos: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM galleries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gallery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit gallery delete: %w", err)
	}
	return nil
}
