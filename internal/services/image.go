package services

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photo-gallery-backend/internal/config"
	"photo-gallery-backend/internal/models"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Rendition is one derived image variant with its encoded bytes
type Rendition struct {
	Data   []byte
	Width  int
	Height int
	Size   int64
}

// RenditionSet holds the three canonical renditions of an uploaded photo
type RenditionSet struct {
	Original  Rendition
	Web       Rendition
	Thumbnail Rendition
	// Format is the sniffed container format of the original upload
	Format string
}

// ImageService derives the three canonical renditions from an uploaded photo
// buffer and allocates their storage keys
type ImageService struct {
	webMaxDim    int
	webQuality   int
	thumbMaxDim  int
	thumbQuality int
}

// NewImageService creates a new image service
func NewImageService(cfg config.UploadConfig) *ImageService {
	return &ImageService{
		webMaxDim:    cfg.WebMaxDimension,
		webQuality:   cfg.WebQuality,
		thumbMaxDim:  cfg.ThumbMaxDimension,
		thumbQuality: cfg.ThumbQuality,
	}
}

// Allow-listed container formats and their file extensions
var formatExtensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"webp": "webp",
	"tiff": "tif",
	"heif": "heic",
}

// sniffFormat identifies the image container by magic bytes. Returns "" for
// anything outside the allow-list.
func sniffFormat(buf []byte) string {
	switch {
	case len(buf) >= 3 && buf[0] == 0xFF && buf[1] == 0xD8 && buf[2] == 0xFF:
		return "jpeg"
	case len(buf) >= 8 && bytes.Equal(buf[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(buf) >= 12 && bytes.Equal(buf[:4], []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("WEBP")):
		return "webp"
	case len(buf) >= 4 && (bytes.Equal(buf[:4], []byte{'I', 'I', 0x2A, 0x00}) || bytes.Equal(buf[:4], []byte{'M', 'M', 0x00, 0x2A})):
		return "tiff"
	case len(buf) >= 12 && bytes.Equal(buf[4:8], []byte("ftyp")) && isHeifBrand(buf[8:12]):
		return "heif"
	default:
		return ""
	}
}

func isHeifBrand(brand []byte) bool {
	switch string(brand) {
	case "heic", "heix", "hevc", "heim", "heis", "hevm", "hevs", "mif1", "msf1":
		return true
	}
	return false
}

// Validate reports whether the buffer is one of the supported image formats
// (JPEG, PNG, WebP, TIFF, HEIF/HEIC). Malformed buffers yield false, never an
// error.
func (s *ImageService) Validate(buf []byte) bool {
	format := sniffFormat(buf)
	if format == "" {
		return false
	}
	if format == "heif" {
		// No registered decoder; the container sniff is the best available check
		return true
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(buf))
	return err == nil
}

// DeriveRenditions produces the three renditions from an uploaded buffer:
//   - original: byte-for-byte identical to the input, only dimensions read
//   - web: fit inside the web bound, JPEG at web quality, never upscaled
//   - thumbnail: same policy with the thumbnail bound and quality
func (s *ImageService) DeriveRenditions(buf []byte) (*RenditionSet, error) {
	format := sniffFormat(buf)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	original := Rendition{
		Data:   buf,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Size:   int64(len(buf)),
	}

	web, err := s.resize(img, s.webMaxDim, s.webQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to derive web rendition: %w", err)
	}

	thumb, err := s.resize(img, s.thumbMaxDim, s.thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to derive thumbnail rendition: %w", err)
	}

	return &RenditionSet{
		Original:  original,
		Web:       web,
		Thumbnail: thumb,
		Format:    format,
	}, nil
}

// resize scales the image down so neither dimension exceeds maxDim, keeping
// aspect ratio, and encodes it as JPEG. Images already within the bound keep
// their dimensions.
func (s *ImageService) resize(img image.Image, maxDim, quality int) (Rendition, error) {
	bounds := img.Bounds()
	resized := img
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return Rendition{}, err
	}

	rb := resized.Bounds()
	return Rendition{
		Data:   out.Bytes(),
		Width:  rb.Dx(),
		Height: rb.Dy(),
		Size:   int64(out.Len()),
	}, nil
}

// ExtractCaptureMetadata reads embedded EXIF data from the upload buffer.
// Parse failures and absent metadata both yield nil; this never fails the
// surrounding upload.
func (s *ImageService) ExtractCaptureMetadata(buf []byte) *models.ExifData {
	x, err := exif.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil
	}

	data := &models.ExifData{}
	found := false

	if v, err := tagString(x, exif.Make); err == nil {
		data.CameraMake = &v
		found = true
	}
	if v, err := tagString(x, exif.Model); err == nil {
		data.CameraModel = &v
		found = true
	}
	if v, err := tagString(x, exif.LensModel); err == nil {
		data.LensModel = &v
		found = true
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			data.ISO = &iso
			found = true
		}
	}
	if v, ok := tagRatio(x, exif.FNumber); ok {
		data.Aperture = &v
		found = true
	}
	if v, ok := tagRatio(x, exif.ExposureTime); ok {
		data.ShutterSpeed = &v
		found = true
	}
	if v, ok := tagRatio(x, exif.FocalLength); ok {
		data.FocalLength = &v
		found = true
	}
	if t, err := x.DateTime(); err == nil {
		data.DateTaken = &t
		found = true
	}

	if !found {
		return nil
	}
	return data
}

func tagString(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}

func tagRatio(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// PhotoKeys holds the storage keys for a photo's three renditions
type PhotoKeys struct {
	Original  string
	Web       string
	Thumbnail string
}

// AllocatePhotoKeys builds the deterministic storage keys for a photo:
// galleries/{galleryId}/{photoId}/{variant}.{ext}. The original keeps its
// native extension; derived renditions are JPEG.
func AllocatePhotoKeys(galleryID, photoID, format string) PhotoKeys {
	ext, ok := formatExtensions[format]
	if !ok {
		ext = "jpg"
	}
	base := fmt.Sprintf("galleries/%s/%s", galleryID, photoID)
	return PhotoKeys{
		Original:  fmt.Sprintf("%s/original.%s", base, ext),
		Web:       fmt.Sprintf("%s/web.jpg", base),
		Thumbnail: fmt.Sprintf("%s/thumb.jpg", base),
	}
}
