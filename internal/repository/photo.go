package repository

import (
	"context"
	"fmt"
	"strings"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `id, gallery_id, filename, original_filename, original_key, web_key, thumbnail_key,
		width, height, file_size, sort_order, is_featured, is_hidden, view_count, download_count, exif_data, uploaded_at`

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(
		&p.ID, &p.GalleryID, &p.Filename, &p.OriginalFilename,
		&p.OriginalKey, &p.WebKey, &p.ThumbnailKey,
		&p.Width, &p.Height, &p.FileSize, &p.SortOrder,
		&p.IsFeatured, &p.IsHidden, &p.ViewCount, &p.DownloadCount,
		&p.ExifData, &p.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new photo row. Callers must only invoke this after all
// three renditions have been durably stored.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, gallery_id, filename, original_filename, original_key, web_key, thumbnail_key,
			width, height, file_size, sort_order, is_featured, is_hidden, view_count, download_count, exif_data, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.GalleryID, photo.Filename, photo.OriginalFilename,
		photo.OriginalKey, photo.WebKey, photo.ThumbnailKey,
		photo.Width, photo.Height, photo.FileSize, photo.SortOrder,
		photo.IsFeatured, photo.IsHidden, photo.ViewCount, photo.DownloadCount,
		photo.ExifData, photo.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("photo not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListByGallery retrieves all photos in a gallery in display order
func (r *PhotoRepository) ListByGallery(ctx context.Context, galleryID string, includeHidden bool) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE gallery_id = $1`
	if !includeHidden {
		query += ` AND is_hidden = false`
	}
	query += ` ORDER BY sort_order ASC, uploaded_at ASC`
	return r.list(ctx, query, galleryID)
}

// ListFeatured retrieves featured photos from public galleries, newest first
func (r *PhotoRepository) ListFeatured(ctx context.Context) ([]*models.Photo, error) {
	query := `
		SELECT ` + photoPrefixed("p") + `
		FROM photos p
		JOIN galleries g ON p.gallery_id = g.id
		WHERE p.is_featured = true AND p.is_hidden = false AND g.is_public = true
		ORDER BY p.uploaded_at DESC
	`
	return r.list(ctx, query)
}

func photoPrefixed(alias string) string {
	cols := strings.Split(photoColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func (r *PhotoRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Photo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// CountByGallery returns the number of photos in a gallery
func (r *PhotoRepository) CountByGallery(ctx context.Context, galleryID string) (int, error) {
	query := `SELECT COUNT(*) FROM photos WHERE gallery_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, galleryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// Totals returns aggregate photo counts for the admin stats summary
func (r *PhotoRepository) Totals(ctx context.Context) (photos, views, downloads int, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(view_count), 0), COALESCE(SUM(download_count), 0) FROM photos`
	if err := r.db.QueryRow(ctx, query).Scan(&photos, &views, &downloads); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get photo totals: %w", err)
	}
	return photos, views, downloads, nil
}

// Update applies a partial update with a closed field set
func (r *PhotoRepository) Update(ctx context.Context, id string, patch *models.PhotoPatch) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if patch.IsFeatured != nil {
		add("is_featured", *patch.IsFeatured)
	}
	if patch.IsHidden != nil {
		add("is_hidden", *patch.IsHidden)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE photos SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// UpdateLocation moves a photo to another gallery, rewriting gallery reference
// and all three storage keys in a single statement
func (r *PhotoRepository) UpdateLocation(ctx context.Context, id, galleryID, originalKey, webKey, thumbnailKey string) error {
	query := `
		UPDATE photos
		SET gallery_id = $1, original_key = $2, web_key = $3, thumbnail_key = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query, galleryID, originalKey, webKey, thumbnailKey, id)
	if err != nil {
		return fmt.Errorf("failed to update photo location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// Reorder rewrites sort_order for the given photos within one gallery.
// The slice order is the new display order.
func (r *PhotoRepository) Reorder(ctx context.Context, galleryID string, photoIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE photos SET sort_order = $1 WHERE id = $2 AND gallery_id = $3`
	for i, photoID := range photoIDs {
		if _, err := tx.Exec(ctx, query, i, photoID, galleryID); err != nil {
			return fmt.Errorf("failed to reorder photo: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// IncrementViews increments the photo view counter
func (r *PhotoRepository) IncrementViews(ctx context.Context, id string) error {
	query := `UPDATE photos SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment photo views: %w", err)
	}
	return nil
}

// IncrementDownloads increments the photo download counter
func (r *PhotoRepository) IncrementDownloads(ctx context.Context, id string) error {
	query := `UPDATE photos SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment photo downloads: %w", err)
	}
	return nil
}

// Delete removes a photo row
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}
