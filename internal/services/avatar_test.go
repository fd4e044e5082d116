package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erhmprah/ebook/internal/models"
	apperrors "github.com/erhmprah/ebook/pkg/errors"
	"github.com/erhmprah/ebook/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.UserProfile{}, &models.ActivityLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeStore records every call so tests can assert on pipeline behavior.
// failPutAt fails the nth Put (1-based).
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putCalls  int
	deleted   []string
	failPutAt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPutAt > 0 && s.putCalls == s.failPutAt {
		return "", fmt.Errorf("injected put failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return key, nil
}

func (s *fakeStore) Get(ctx context.Context, locator string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[locator]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return data, nil
}

func (s *fakeStore) Delete(ctx context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, locator)
	delete(s.objects, locator)
	return nil
}

func (s *fakeStore) ResolveURL(locator string) string {
	return "http://cdn.test/" + locator
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func seedProfile(t *testing.T, db *gorm.DB, userID, avatarURL string) {
	t.Helper()
	profile := models.UserProfile{
		UserID:    userID,
		FullName:  "Test Reader",
		Email:     userID + "@example.com",
		AvatarURL: avatarURL,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func newAvatarService(db *gorm.DB, store *fakeStore) *AvatarService {
	return NewAvatarService(db, store, NewActivityLog(db))
}

func TestUploadAvatarSuccess(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	in := UploadInput{Data: testPNG(t, 600, 600), ContentType: "image/png"}
	result, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.NoError(t, err)

	// Exactly four locators, original shares large's file.
	assert.NotEmpty(t, result.AvatarURLs.Thumbnail)
	assert.NotEmpty(t, result.AvatarURLs.Medium)
	assert.NotEmpty(t, result.AvatarURLs.Large)
	assert.Equal(t, result.AvatarURLs.Large, result.AvatarURLs.Original)
	assert.Equal(t, 3, store.putCalls)

	assert.Equal(t, 150, result.FileSizes["thumbnail"].Width)
	assert.Equal(t, 150, result.FileSizes["thumbnail"].Height)

	// The stored field decodes back to the same structured map.
	var profile models.UserProfile
	assert.NoError(t, db.Where("user_id = ?", "u1").First(&profile).Error)
	record := models.DecodeAvatarRecord(profile.AvatarURL)
	assert.Equal(t, models.AvatarStructured, record.Kind)
	assert.Equal(t, result.AvatarURLs, record.Variants)

	// Audit entry exists.
	var count int64
	db.Model(&models.ActivityLog{}).
		Where("user_id = ? AND activity_type = ?", "u1", models.ActivityAvatarUpload).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUploadAvatarFileTooLarge(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	in := UploadInput{Data: make([]byte, MaxAvatarSize+1), ContentType: "image/png"}
	_, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	assert.Equal(t, 0, store.putCalls)
}

func TestUploadAvatarUnsupportedType(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	in := UploadInput{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"}
	_, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedType)
	assert.Equal(t, 0, store.putCalls)
}

func TestUploadAvatarMissingFile(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())

	_, err := svc.Upload(context.Background(), "u1", UploadInput{ContentType: "image/png"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingFile)
}

func TestUploadAvatarUnauthenticated(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())

	_, err := svc.Upload(context.Background(), "", UploadInput{Data: []byte("x"), ContentType: "image/png"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestUploadAvatarCorruptImage(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	in := UploadInput{Data: []byte("not an image at all"), ContentType: "image/png"}
	_, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.ErrorIs(t, err, apperrors.ErrImageProcessing)
	assert.Equal(t, 0, store.putCalls)
}

func TestUploadAvatarPartialFailureKeepsOldRecord(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)

	oldRecord := `{"thumbnail":"old_t.jpg","medium":"old_m.jpg","large":"old_l.jpg","original":"old_l.jpg"}`
	seedProfile(t, db, "u1", oldRecord)

	store.failPutAt = 2

	in := UploadInput{Data: testPNG(t, 600, 600), ContentType: "image/png"}
	_, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.ErrorIs(t, err, apperrors.ErrUploadFailed)

	// The previous avatar is untouched.
	var profile models.UserProfile
	assert.NoError(t, db.Where("user_id = ?", "u1").First(&profile).Error)
	assert.Equal(t, oldRecord, profile.AvatarURL)

	// The first variant of the failed attempt was cleaned up; the old
	// files were not deleted.
	assert.Len(t, store.deleted, 1)
	assert.NotContains(t, store.deleted, "old_t.jpg")
	assert.NotContains(t, store.deleted, "old_l.jpg")
}

func TestUploadAvatarReplacesOldVariantsAfterCommit(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)

	seedProfile(t, db, "u1", `{"thumbnail":"old_t.jpg","medium":"old_m.jpg","large":"old_l.jpg","original":"old_l.jpg"}`)

	in := UploadInput{Data: testPNG(t, 600, 600), ContentType: "image/png"}
	result, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.NoError(t, err)

	// Old physical files are gone, exactly once each (original shares
	// large's file).
	assert.ElementsMatch(t, []string{"old_t.jpg", "old_m.jpg", "old_l.jpg"}, store.deleted)

	var profile models.UserProfile
	assert.NoError(t, db.Where("user_id = ?", "u1").First(&profile).Error)
	record := models.DecodeAvatarRecord(profile.AvatarURL)
	assert.Equal(t, result.AvatarURLs, record.Variants)
}

func TestGetAvatarRoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	in := UploadInput{Data: testPNG(t, 600, 600), ContentType: "image/png"}
	result, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.NoError(t, err)

	info, err := svc.Get(context.Background(), "u1")
	assert.NoError(t, err)
	assert.True(t, info.HasAvatar)
	assert.False(t, info.IsGoogleAvatar)
	assert.NotNil(t, info.UploadedAt)

	assert.Equal(t, store.ResolveURL(result.AvatarURLs.Thumbnail), info.AvatarURLs.Thumbnail)
	assert.Equal(t, store.ResolveURL(result.AvatarURLs.Large), info.AvatarURLs.Large)
	assert.Equal(t, info.AvatarURLs.Large, info.AvatarURLs.Original)
}

func TestGetAvatarNone(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())
	seedProfile(t, db, "u1", "")

	info, err := svc.Get(context.Background(), "u1")
	assert.NoError(t, err)
	assert.False(t, info.HasAvatar)
	assert.Nil(t, info.AvatarURLs)
}

func TestGetAvatarMissingProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())

	info, err := svc.Get(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.False(t, info.HasAvatar)
}

func TestGetAvatarLegacyURL(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())
	seedProfile(t, db, "u1", "https://example.com/photo.jpg")

	info, err := svc.Get(context.Background(), "u1")
	assert.NoError(t, err)
	assert.True(t, info.HasAvatar)
	assert.True(t, info.IsGoogleAvatar)
	assert.Equal(t, "https://example.com/photo.jpg", info.AvatarURLs.Thumbnail)
	assert.Equal(t, "https://example.com/photo.jpg", info.AvatarURLs.Medium)
	assert.Equal(t, "https://example.com/photo.jpg", info.AvatarURLs.Large)
	assert.Equal(t, "https://example.com/photo.jpg", info.AvatarURLs.Original)
}

func TestGetAvatarUnknownFormat(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())
	seedProfile(t, db, "u1", "???weird-value???")

	info, err := svc.Get(context.Background(), "u1")
	assert.NoError(t, err)
	assert.False(t, info.HasAvatar)
}

func TestDeleteAvatarStructured(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", `{"thumbnail":"t.jpg","medium":"m.jpg","large":"l.jpg","original":"l.jpg"}`)

	assert.NoError(t, svc.Delete(context.Background(), "u1", nil))

	// Three distinct files deleted; original shares large's locator.
	assert.ElementsMatch(t, []string{"t.jpg", "m.jpg", "l.jpg"}, store.deleted)

	var profile models.UserProfile
	assert.NoError(t, db.Where("user_id = ?", "u1").First(&profile).Error)
	assert.Empty(t, profile.AvatarURL)

	var count int64
	db.Model(&models.ActivityLog{}).
		Where("user_id = ? AND activity_type = ?", "u1", models.ActivityAvatarDelete).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAvatarTwice(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", `{"thumbnail":"t.jpg","medium":"m.jpg","large":"l.jpg","original":"l.jpg"}`)

	assert.NoError(t, svc.Delete(context.Background(), "u1", nil))

	err := svc.Delete(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, apperrors.ErrNoAvatar)
}

func TestDeleteAvatarLegacyURLSkipsBlobStore(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "https://example.com/photo.jpg")

	assert.NoError(t, svc.Delete(context.Background(), "u1", nil))
	assert.Empty(t, store.deleted)

	var profile models.UserProfile
	assert.NoError(t, db.Where("user_id = ?", "u1").First(&profile).Error)
	assert.Empty(t, profile.AvatarURL)
}

func TestDeleteAvatarMissingProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAvatarService(db, newFakeStore())

	err := svc.Delete(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, apperrors.ErrNoAvatar)
}

func TestActivityLogNeverFailsCaller(t *testing.T) {
	db := newTestDB(t)
	logSink := NewActivityLog(db)

	// Dropping the table makes every insert fail; Record must swallow it.
	assert.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))
	assert.NotPanics(t, func() {
		logSink.Record("u1", models.ActivityLogin, "Logged in", &RequestContext{IPAddress: "127.0.0.1"})
	})
}

func TestUploadAvatarWebpContentTypeAccepted(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := newAvatarService(db, store)
	seedProfile(t, db, "u1", "")

	// PNG bytes with a webp content type still pass MIME validation and
	// decode by sniffing; the declared type only gates the allow-list.
	in := UploadInput{Data: testPNG(t, 300, 300), ContentType: "image/webp"}
	result, err := svc.Upload(context.Background(), "u1", in, nil)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.AvatarURLs.Thumbnail, "_thumbnail.jpg"))
}
