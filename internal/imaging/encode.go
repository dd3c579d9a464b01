package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxPreviewScale caps the zoom factor of EncodePreview.
const MaxPreviewScale = 16

// EncodedImage contains a base64 PNG and its dimensions.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeBase64PNG encodes img as PNG and returns the base64 string.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodePreview enlarges img by an integer factor with nearest-neighbor
// sampling, so every pixel becomes a scale x scale square, and encodes the
// result as a base64 PNG. A scale of 1 encodes the image unchanged.
func EncodePreview(img image.Image, scale int) (*EncodedImage, error) {
	if scale < 1 || scale > MaxPreviewScale {
		return nil, fmt.Errorf("preview scale must be 1-%d, got %d", MaxPreviewScale, scale)
	}

	out := img
	if scale > 1 {
		b := img.Bounds()
		out = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}

	encoded, err := EncodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
