package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"photo-gallery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore records object operations in memory
type fakeObjectStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failPut  map[string]bool
	failDel  bool
	failCopy bool
	signed   int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		failPut: make(map[string]bool),
	}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut[key] {
		return fmt.Errorf("upload failed for %s", key)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return fmt.Errorf("delete failed for %s", key)
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, sourceKey, destKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCopy {
		return fmt.Errorf("copy failed")
	}
	data, ok := f.objects[sourceKey]
	if !ok {
		return fmt.Errorf("source %s not found", sourceKey)
	}
	f.objects[destKey] = data
	return nil
}

func (f *fakeObjectStore) SignedURL(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signed++
	return "https://signed.example.com/" + key, nil
}

func (f *fakeObjectStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

// fakePhotoStore is an in-memory PhotoStore
type fakePhotoStore struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[string]*models.Photo)}
}

func (f *fakePhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *photo
	f.photos[photo.ID] = &p
	return nil
}

func (f *fakePhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePhotoStore) ListByGallery(ctx context.Context, galleryID string, includeHidden bool) ([]*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Photo
	for _, p := range f.photos {
		if p.GalleryID == galleryID && (includeHidden || !p.IsHidden) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePhotoStore) ListFeatured(ctx context.Context) ([]*models.Photo, error) {
	return nil, nil
}

func (f *fakePhotoStore) CountByGallery(ctx context.Context, galleryID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.photos {
		if p.GalleryID == galleryID {
			count++
		}
	}
	return count, nil
}

func (f *fakePhotoStore) Update(ctx context.Context, id string, patch *models.PhotoPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return fmt.Errorf("photo not found")
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.IsHidden != nil {
		p.IsHidden = *patch.IsHidden
	}
	if patch.SortOrder != nil {
		p.SortOrder = *patch.SortOrder
	}
	return nil
}

func (f *fakePhotoStore) UpdateLocation(ctx context.Context, id, galleryID, originalKey, webKey, thumbnailKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok {
		return fmt.Errorf("photo not found")
	}
	p.GalleryID = galleryID
	p.OriginalKey = originalKey
	p.WebKey = webKey
	p.ThumbnailKey = thumbnailKey
	return nil
}

func (f *fakePhotoStore) Reorder(ctx context.Context, galleryID string, photoIDs []string) error {
	for i, id := range photoIDs {
		order := i
		if err := f.Update(ctx, id, &models.PhotoPatch{SortOrder: &order}); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePhotoStore) IncrementViews(ctx context.Context, id string) error     { return nil }
func (f *fakePhotoStore) IncrementDownloads(ctx context.Context, id string) error { return nil }

func (f *fakePhotoStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.photos[id]; !ok {
		return fmt.Errorf("photo not found")
	}
	delete(f.photos, id)
	return nil
}

func newTestPhotoService() (*PhotoService, *fakePhotoStore, *fakeObjectStore) {
	repo := newFakePhotoStore()
	store := newFakeObjectStore()
	svc := NewPhotoService(repo, newTestImageService(), store)
	return svc, repo, store
}

func TestUpload_StoresThreeRenditionsThenRow(t *testing.T) {
	svc, repo, store := newTestPhotoService()
	buf := encodeJPEG(t, 3000, 2000)

	photo, err := svc.Upload(context.Background(), "g1", "holiday.jpg", buf)
	require.NoError(t, err)

	assert.Equal(t, "g1", photo.GalleryID)
	assert.Equal(t, "holiday.jpg", photo.OriginalFilename)
	assert.Equal(t, 3000, photo.Width)
	assert.Equal(t, 2000, photo.Height)
	assert.Equal(t, int64(len(buf)), photo.FileSize)

	prefix := "galleries/g1/" + photo.ID + "/"
	assert.Equal(t, prefix+"original.jpg", photo.OriginalKey)
	assert.Equal(t, prefix+"web.jpg", photo.WebKey)
	assert.Equal(t, prefix+"thumb.jpg", photo.ThumbnailKey)

	assert.Len(t, store.keys(), 3)
	assert.Equal(t, buf, store.objects[photo.OriginalKey])

	stored, err := repo.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.OriginalKey, stored.OriginalKey)
}

func TestUpload_FailedRenditionWritesNoRow(t *testing.T) {
	svc, repo, store := newTestPhotoService()
	buf := encodeJPEG(t, 1000, 800)

	// Every web.jpg put fails; the upload must fail as a whole
	failWeb := &failingStore{inner: store, failSuffix: "/web.jpg"}
	svc = NewPhotoService(repo, newTestImageService(), failWeb)

	_, err := svc.Upload(context.Background(), "g1", "x.jpg", buf)
	require.Error(t, err)

	repo.mu.Lock()
	assert.Empty(t, repo.photos)
	repo.mu.Unlock()
}

// failingStore wraps a fakeObjectStore and fails puts for keys with a suffix
type failingStore struct {
	inner      *fakeObjectStore
	failSuffix string
}

func (f *failingStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if strings.HasSuffix(key, f.failSuffix) {
		return fmt.Errorf("upload failed for %s", key)
	}
	return f.inner.Upload(ctx, key, data, contentType)
}

func (f *failingStore) Delete(ctx context.Context, key string) error { return f.inner.Delete(ctx, key) }
func (f *failingStore) Copy(ctx context.Context, sourceKey, destKey string) error {
	return f.inner.Copy(ctx, sourceKey, destKey)
}
func (f *failingStore) SignedURL(ctx context.Context, key string) (string, error) {
	return f.inner.SignedURL(ctx, key)
}

func TestUpload_RejectsUnsupportedFormat(t *testing.T) {
	svc, repo, store := newTestPhotoService()

	_, err := svc.Upload(context.Background(), "g1", "doc.gif", []byte("GIF89a\x00\x00"))
	require.Error(t, err)
	assert.Empty(t, store.keys())
	repo.mu.Lock()
	assert.Empty(t, repo.photos)
	repo.mu.Unlock()
}

func TestRelocate_RekeysUnderTargetGallery(t *testing.T) {
	svc, _, store := newTestPhotoService()
	buf := encodeJPEG(t, 1200, 900)

	photo, err := svc.Upload(context.Background(), "g1", "move-me.jpg", buf)
	require.NoError(t, err)

	moved, err := svc.Relocate(context.Background(), photo.ID, "g2")
	require.NoError(t, err)

	assert.Equal(t, "g2", moved.GalleryID)
	prefix := "galleries/g2/" + photo.ID + "/"
	assert.Equal(t, prefix+"original.jpg", moved.OriginalKey)
	assert.Equal(t, prefix+"web.jpg", moved.WebKey)
	assert.Equal(t, prefix+"thumb.jpg", moved.ThumbnailKey)

	// No key points under the old gallery anymore
	for _, key := range store.keys() {
		assert.False(t, strings.HasPrefix(key, "galleries/g1/"), "stale key %s", key)
	}
	assert.Len(t, store.keys(), 3)
}

func TestRelocate_CopyFailureAborts(t *testing.T) {
	svc, repo, store := newTestPhotoService()
	buf := encodeJPEG(t, 1200, 900)

	photo, err := svc.Upload(context.Background(), "g1", "stay.jpg", buf)
	require.NoError(t, err)

	store.mu.Lock()
	store.failCopy = true
	store.mu.Unlock()

	_, err = svc.Relocate(context.Background(), photo.ID, "g2")
	require.Error(t, err)

	// Row still points at the original gallery
	current, err := repo.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, "g1", current.GalleryID)
	assert.True(t, strings.HasPrefix(current.OriginalKey, "galleries/g1/"))
}

func TestRelocate_DeleteFailureDoesNotRollBack(t *testing.T) {
	svc, repo, store := newTestPhotoService()
	buf := encodeJPEG(t, 1200, 900)

	photo, err := svc.Upload(context.Background(), "g1", "orphan.jpg", buf)
	require.NoError(t, err)

	store.mu.Lock()
	store.failDel = true
	store.mu.Unlock()

	moved, err := svc.Relocate(context.Background(), photo.ID, "g2")
	require.NoError(t, err)
	assert.Equal(t, "g2", moved.GalleryID)

	// Old objects are orphaned bytes, not a rollback trigger
	current, err := repo.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(current.OriginalKey, "galleries/g2/"))
}

func TestRelocateBatch_ContinuesPastFailures(t *testing.T) {
	svc, _, _ := newTestPhotoService()
	buf := encodeJPEG(t, 800, 600)

	a, err := svc.Upload(context.Background(), "g1", "a.jpg", buf)
	require.NoError(t, err)
	b, err := svc.Upload(context.Background(), "g1", "b.jpg", buf)
	require.NoError(t, err)

	moved, failed := svc.RelocateBatch(context.Background(), []string{a.ID, "missing", b.ID}, "g2")
	assert.Len(t, moved, 2)
	assert.Equal(t, []string{"missing"}, failed)
}

func TestDelete_RowGoneRenditionsBestEffort(t *testing.T) {
	svc, repo, store := newTestPhotoService()
	buf := encodeJPEG(t, 800, 600)

	photo, err := svc.Upload(context.Background(), "g1", "bye.jpg", buf)
	require.NoError(t, err)

	store.mu.Lock()
	store.failDel = true
	store.mu.Unlock()

	// Storage cleanup failure never surfaces; the row's absence is the truth
	require.NoError(t, svc.Delete(context.Background(), photo.ID))

	_, err = repo.GetByID(context.Background(), photo.ID)
	assert.Error(t, err)
}

func TestDeleteRenditions_CountsSuccesses(t *testing.T) {
	svc, _, store := newTestPhotoService()
	buf := encodeJPEG(t, 800, 600)

	photo, err := svc.Upload(context.Background(), "g1", "count.jpg", buf)
	require.NoError(t, err)

	assert.Equal(t, 3, svc.DeleteRenditions(context.Background(), photo))
	assert.Empty(t, store.keys())

	store.mu.Lock()
	store.failDel = true
	store.mu.Unlock()
	assert.Equal(t, 0, svc.DeleteRenditions(context.Background(), photo))
}

func TestWithURLs_SignsAllThree(t *testing.T) {
	svc, _, store := newTestPhotoService()
	buf := encodeJPEG(t, 800, 600)

	photo, err := svc.Upload(context.Background(), "g1", "signed.jpg", buf)
	require.NoError(t, err)

	enriched, err := svc.WithURLs(context.Background(), photo)
	require.NoError(t, err)
	assert.Contains(t, enriched.URL, photo.OriginalKey)
	assert.Contains(t, enriched.WebURL, photo.WebKey)
	assert.Contains(t, enriched.ThumbnailURL, photo.ThumbnailKey)
	assert.Equal(t, 3, store.signed)
}

func TestFormatFromKey(t *testing.T) {
	assert.Equal(t, "jpeg", formatFromKey("galleries/g/p/original.jpg"))
	assert.Equal(t, "png", formatFromKey("galleries/g/p/original.png"))
	assert.Equal(t, "tiff", formatFromKey("galleries/g/p/original.tif"))
	assert.Equal(t, "heif", formatFromKey("galleries/g/p/original.heic"))
	assert.Equal(t, "jpeg", formatFromKey("galleries/g/p/original.unknown"))
}
