package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeAvatarRecordStructured(t *testing.T) {
	variants := AvatarVariants{
		Thumbnail: "u1-1-aa_thumbnail.jpg",
		Medium:    "u1-1-aa_medium.jpg",
		Large:     "u1-1-aa_large.jpg",
		Original:  "u1-1-aa_large.jpg",
	}
	raw, err := variants.Encode()
	assert.NoError(t, err)

	record := DecodeAvatarRecord(raw)
	assert.Equal(t, AvatarStructured, record.Kind)
	assert.Equal(t, variants, record.Variants)
}

func TestDecodeAvatarRecordFillsMissingOriginal(t *testing.T) {
	raw := `{"thumbnail":"t.jpg","medium":"m.jpg","large":"l.jpg"}`

	record := DecodeAvatarRecord(raw)
	assert.Equal(t, AvatarStructured, record.Kind)
	assert.Equal(t, "l.jpg", record.Variants.Original)
}

func TestDecodeAvatarRecordExternalURL(t *testing.T) {
	record := DecodeAvatarRecord("https://example.com/photo.jpg")
	assert.Equal(t, AvatarExternalURL, record.Kind)
	assert.Equal(t, "https://example.com/photo.jpg", record.URL)

	record = DecodeAvatarRecord("  http://example.com/photo.jpg ")
	assert.Equal(t, AvatarExternalURL, record.Kind)
}

func TestDecodeAvatarRecordNone(t *testing.T) {
	assert.Equal(t, AvatarNone, DecodeAvatarRecord("").Kind)
	assert.Equal(t, AvatarNone, DecodeAvatarRecord("   ").Kind)
	assert.Equal(t, AvatarNone, DecodeAvatarRecord("not-a-url-or-json").Kind)
	assert.Equal(t, AvatarNone, DecodeAvatarRecord("ftp://example.com/x.jpg").Kind)
	// JSON, but not the locator map shape
	assert.Equal(t, AvatarNone, DecodeAvatarRecord(`{"foo":"bar"}`).Kind)
	assert.Equal(t, AvatarNone, DecodeAvatarRecord(`{"thumbnail":""}`).Kind)
}
