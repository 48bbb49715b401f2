package models

import "time"

// Gallery represents a collection of photos, optionally password-protected
type Gallery struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	CoverPhotoID *string   `json:"cover_photo_id,omitempty"`
	IsPublic     bool      `json:"is_public"`
	PasswordHash *string   `json:"-"`
	ViewCount    int       `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Photo represents a single photo with its three stored renditions
type Photo struct {
	ID               string    `json:"id"`
	GalleryID        string    `json:"gallery_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	OriginalKey      string    `json:"-"`
	WebKey           string    `json:"-"`
	ThumbnailKey     string    `json:"-"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	FileSize         int64     `json:"file_size"`
	SortOrder        int       `json:"sort_order"`
	IsFeatured       bool      `json:"is_featured"`
	IsHidden         bool      `json:"is_hidden"`
	ViewCount        int       `json:"view_count"`
	DownloadCount    int       `json:"download_count"`
	ExifData         *ExifData `json:"exif_data,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// ExifData holds capture metadata extracted from an uploaded photo
type ExifData struct {
	CameraMake   *string    `json:"camera_make,omitempty"`
	CameraModel  *string    `json:"camera_model,omitempty"`
	LensModel    *string    `json:"lens_model,omitempty"`
	ISO          *int       `json:"iso,omitempty"`
	Aperture     *float64   `json:"aperture,omitempty"`
	ShutterSpeed *float64   `json:"shutter_speed,omitempty"`
	FocalLength  *float64   `json:"focal_length,omitempty"`
	DateTaken    *time.Time `json:"date_taken,omitempty"`
}

// ContactMessage represents a visitor message submitted through the contact
// form. Messages are stored for the admin console; no mail is sent.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents an admin user
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// GalleryPatch carries optional gallery fields for partial updates.
// Only non-nil fields are written; the field set is closed.
type GalleryPatch struct {
	Title       *string `json:"title,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	// Password is plain text; the service hashes it before storage.
	// The stored hash is cleared only when the gallery is made public.
	Password *string `json:"password,omitempty"`
}

// PhotoPatch carries optional photo fields for partial updates
type PhotoPatch struct {
	IsFeatured *bool `json:"is_featured,omitempty"`
	IsHidden   *bool `json:"is_hidden,omitempty"`
	SortOrder  *int  `json:"sort_order,omitempty"`
}
