package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDeriveAllSizes(t *testing.T) {
	src := testPNG(t, 640, 480)

	variants, err := DeriveAll(src)
	assert.NoError(t, err)
	assert.Len(t, variants, 3)

	for _, spec := range Sizes {
		data, ok := variants[spec.Name]
		assert.True(t, ok, "missing %s variant", spec.Name)

		img, err := jpeg.Decode(bytes.NewReader(data))
		assert.NoError(t, err)
		bounds := img.Bounds()
		assert.Equal(t, spec.Width, bounds.Dx(), "%s width", spec.Name)
		assert.Equal(t, spec.Height, bounds.Dy(), "%s height", spec.Name)
	}
}

func TestDeriveCoversNonSquareSource(t *testing.T) {
	// Wide source must be cropped, not squashed, into the square target.
	src := testPNG(t, 900, 300)

	img, err := Decode(src)
	assert.NoError(t, err)

	data, err := Derive(img, Sizes[0])
	assert.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 150, out.Bounds().Dy())
}

func TestDeriveAllCorruptSource(t *testing.T) {
	_, err := DeriveAll([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestSizeMetadata(t *testing.T) {
	meta := SizeMetadata()
	assert.Equal(t, Dimensions{Width: 150, Height: 150}, meta["thumbnail"])
	assert.Equal(t, Dimensions{Width: 300, Height: 300}, meta["medium"])
	assert.Equal(t, Dimensions{Width: 500, Height: 500}, meta["large"])
}
