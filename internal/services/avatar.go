package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/images"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/storage"
	apperrors "github.com/erhmprah/ebook/pkg/errors"
	"github.com/erhmprah/ebook/pkg/logger"
)

// MaxAvatarSize caps avatar uploads at 5 MiB.
const MaxAvatarSize = 5 << 20

// UploadInput is one inbound avatar file.
type UploadInput struct {
	Data        []byte
	ContentType string
}

// UploadResult is returned to the handler after a successful upload.
type UploadResult struct {
	AvatarURLs models.AvatarVariants        `json:"avatar_urls"`
	FileSizes  map[string]images.Dimensions `json:"file_sizes"`
}

// AvatarInfo is the read-side view of a user's avatar.
type AvatarInfo struct {
	HasAvatar      bool
	AvatarURLs     *models.AvatarVariants
	IsGoogleAvatar bool
	UploadedAt     *time.Time
}

// AvatarService drives the avatar pipeline: validation, variant
// derivation, blob-store writes, the single-point profile update, and the
// audit entry. All collaborators are injected; the service holds no
// package-level state.
type AvatarService struct {
	db       *gorm.DB
	store    storage.BlobStore
	activity ActivitySink
}

func NewAvatarService(db *gorm.DB, store storage.BlobStore, activity ActivitySink) *AvatarService {
	return &AvatarService{db: db, store: store, activity: activity}
}

// Upload validates the file, derives the three renditions, stores them,
// and replaces the profile's locator map in one update. The old avatar's
// files are removed only after the new record is durable, so a failed
// upload never leaves the user without an avatar.
func (s *AvatarService) Upload(ctx context.Context, userID string, in UploadInput, rc *RequestContext) (*UploadResult, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if len(in.Data) == 0 {
		return nil, apperrors.ErrMissingFile
	}
	if int64(len(in.Data)) > MaxAvatarSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if !images.AllowedTypes[strings.ToLower(in.ContentType)] {
		return nil, apperrors.ErrUnsupportedType
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	previous := models.DecodeAvatarRecord(profile.AvatarURL)

	src, err := images.Decode(in.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImageProcessing, err)
	}

	// Renditions are processed one at a time. Any failure aborts the
	// whole upload and removes whatever this attempt already stored.
	uploaded := make(map[string]string, len(images.Sizes))
	for _, spec := range images.Sizes {
		data, err := images.Derive(src, spec)
		if err != nil {
			s.cleanupUploads(ctx, uploaded)
			return nil, fmt.Errorf("%w: %v", apperrors.ErrImageProcessing, err)
		}

		key := storage.NewObjectKey(userID, spec.Name, ".jpg")
		locator, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/jpeg")
		if err != nil {
			s.cleanupUploads(ctx, uploaded)
			return nil, fmt.Errorf("%w: store %s variant: %v", apperrors.ErrUploadFailed, spec.Name, err)
		}
		uploaded[spec.Name] = locator
	}

	variants := models.AvatarVariants{
		Thumbnail: uploaded["thumbnail"],
		Medium:    uploaded["medium"],
		Large:     uploaded["large"],
		Original:  uploaded["large"], // no fourth physical file
	}
	encoded, err := variants.Encode()
	if err != nil {
		s.cleanupUploads(ctx, uploaded)
		return nil, fmt.Errorf("%w: encode locator map: %v", apperrors.ErrUploadFailed, err)
	}

	// Single point write, replace not merge. No partial map is ever
	// visible to readers.
	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("avatar_url", encoded).Error; err != nil {
		s.cleanupUploads(ctx, uploaded)
		return nil, fmt.Errorf("%w: persist locator map: %v", apperrors.ErrUploadFailed, err)
	}

	// The superseded files go only after the new record committed.
	if previous.Kind == models.AvatarStructured {
		s.deleteVariantFiles(ctx, previous.Variants)
	}

	s.activity.Record(userID, models.ActivityAvatarUpload, "Updated profile avatar", rc)

	return &UploadResult{
		AvatarURLs: variants,
		FileSizes:  images.SizeMetadata(),
	}, nil
}

// Get resolves the stored avatar field. Structured maps come back with
// browser-facing URLs; a bare external URL (Google sign-in photo) is
// duplicated across all sizes; an unrecognized value reads as no avatar.
func (s *AvatarService) Get(ctx context.Context, userID string) (*AvatarInfo, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AvatarInfo{HasAvatar: false}, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	record := models.DecodeAvatarRecord(profile.AvatarURL)
	switch record.Kind {
	case models.AvatarStructured:
		urls := models.AvatarVariants{
			Thumbnail: s.store.ResolveURL(record.Variants.Thumbnail),
			Medium:    s.store.ResolveURL(record.Variants.Medium),
			Large:     s.store.ResolveURL(record.Variants.Large),
			Original:  s.store.ResolveURL(record.Variants.Original),
		}
		uploadedAt := profile.UpdatedAt
		return &AvatarInfo{HasAvatar: true, AvatarURLs: &urls, UploadedAt: &uploadedAt}, nil

	case models.AvatarExternalURL:
		urls := models.AvatarVariants{
			Thumbnail: record.URL,
			Medium:    record.URL,
			Large:     record.URL,
			Original:  record.URL,
		}
		uploadedAt := profile.UpdatedAt
		return &AvatarInfo{HasAvatar: true, AvatarURLs: &urls, IsGoogleAvatar: true, UploadedAt: &uploadedAt}, nil

	default:
		if profile.AvatarURL != "" {
			logger.Warn().Str("user_id", userID).Str("value", profile.AvatarURL).Msg("Unknown avatar format")
		}
		return &AvatarInfo{HasAvatar: false}, nil
	}
}

// Delete clears the avatar field and, for self-uploaded avatars, removes
// the physical renditions best-effort. External URLs are cleared without
// touching the blob store.
func (s *AvatarService) Delete(ctx context.Context, userID string, rc *RequestContext) error {
	if userID == "" {
		return apperrors.ErrUnauthenticated
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoAvatar
		}
		return fmt.Errorf("load profile: %w", err)
	}

	if profile.AvatarURL == "" {
		return apperrors.ErrNoAvatar
	}

	record := models.DecodeAvatarRecord(profile.AvatarURL)
	description := "Cleared profile avatar"
	if record.Kind == models.AvatarStructured {
		s.deleteVariantFiles(ctx, record.Variants)
		description = "Deleted profile avatar"
	}

	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("avatar_url", "").Error; err != nil {
		return fmt.Errorf("clear avatar field: %w", err)
	}

	s.activity.Record(userID, models.ActivityAvatarDelete, description, rc)
	return nil
}

// cleanupUploads removes this attempt's partial writes. Failures are
// logged, never surfaced: an orphaned blob must not block the retry.
func (s *AvatarService) cleanupUploads(ctx context.Context, uploaded map[string]string) {
	for size, locator := range uploaded {
		if err := s.store.Delete(ctx, locator); err != nil {
			logger.Warn().Err(err).Str("size", size).Str("locator", locator).Msg("Failed to clean up partial avatar upload")
		}
	}
}

// deleteVariantFiles removes the physical files of a structured record.
// Original shares large's locator, so each distinct locator is deleted
// once, tolerating individual failures.
func (s *AvatarService) deleteVariantFiles(ctx context.Context, v models.AvatarVariants) {
	seen := make(map[string]bool, 4)
	for _, locator := range []string{v.Thumbnail, v.Medium, v.Large, v.Original} {
		if locator == "" || seen[locator] {
			continue
		}
		seen[locator] = true
		if err := s.store.Delete(ctx, locator); err != nil {
			logger.Warn().Err(err).Str("locator", locator).Msg("Failed to delete avatar variant")
		}
	}
}
