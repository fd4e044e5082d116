package models

import (
	"encoding/json"
	"strings"
)

// AvatarKind tags the shape of the value stored in user_profiles.avatar_url.
// Self-uploaded avatars are a JSON map of size name to locator; accounts
// created through Google sign-in carry a bare photo URL; anything else is
// treated as no avatar.
type AvatarKind int

const (
	AvatarNone AvatarKind = iota
	AvatarStructured
	AvatarExternalURL
)

// AvatarVariants is the structured payload: one locator per size.
// Original shares Large's locator, there is no fourth physical file.
type AvatarVariants struct {
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	Original  string `json:"original"`
}

// Encode serializes the variant map for storage in the avatar_url column.
func (v AvatarVariants) Encode() (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AvatarRecord is the decoded avatar field. Exactly one payload is active,
// selected by Kind.
type AvatarRecord struct {
	Kind     AvatarKind
	Variants AvatarVariants
	URL      string
}

// DecodeAvatarRecord resolves the stored field into a tagged record.
// Structured decode is attempted first; a bare absolute URL falls back to
// the external-URL shape; everything else is AvatarNone.
func DecodeAvatarRecord(raw string) AvatarRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AvatarRecord{Kind: AvatarNone}
	}

	if strings.HasPrefix(raw, "{") {
		var v AvatarVariants
		if err := json.Unmarshal([]byte(raw), &v); err == nil && v.Thumbnail != "" && v.Large != "" {
			if v.Original == "" {
				v.Original = v.Large
			}
			return AvatarRecord{Kind: AvatarStructured, Variants: v}
		}
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return AvatarRecord{Kind: AvatarExternalURL, URL: raw}
	}

	return AvatarRecord{Kind: AvatarNone}
}
