// Package images turns one source avatar into the fixed set of resized
// renditions the profile UI serves.
package images

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	// webp sources are decode-only; variants are always re-encoded as JPEG.
	_ "golang.org/x/image/webp"
)

// SizeSpec is one target rendition: crop-to-fill at Width x Height,
// centered, re-encoded as JPEG quality 85.
type SizeSpec struct {
	Name   string
	Width  int
	Height int
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

const JPEGQuality = 85

// Sizes lists the renditions derived for every avatar upload, in the
// order they are processed. "original" is not listed: it shares the
// large rendition's file.
var Sizes = []SizeSpec{
	{Name: "thumbnail", Width: 150, Height: 150},
	{Name: "medium", Width: 300, Height: 300},
	{Name: "large", Width: 500, Height: 500},
}

// AllowedTypes is the closed set of accepted upload MIME types.
var AllowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// SizeMetadata returns the per-size dimensions included in upload
// responses as file_sizes.
func SizeMetadata() map[string]Dimensions {
	out := make(map[string]Dimensions, len(Sizes))
	for _, s := range Sizes {
		out[s.Name] = Dimensions{Width: s.Width, Height: s.Height}
	}
	return out
}

// Decode parses the source bytes into an image. An undecodable source is
// the caller's ImageProcessing failure.
func Decode(src []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	return img, nil
}

// Derive produces one rendition of src for the given spec. The fit is
// "cover": scale to fill, crop the overflow around the center.
func Derive(src image.Image, spec SizeSpec) ([]byte, error) {
	dst := imaging.Fill(src, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode %s variant: %w", spec.Name, err)
	}
	return buf.Bytes(), nil
}

// DeriveAll decodes src once and produces every rendition in Sizes.
// All-or-nothing: any failure returns an error and no partial map.
func DeriveAll(src []byte) (map[string][]byte, error) {
	img, err := Decode(src)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(Sizes))
	for _, spec := range Sizes {
		data, err := Derive(img, spec)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = data
	}
	return out, nil
}
