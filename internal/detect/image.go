package detect

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const jpegQuality = 85

// DecodeBase64Image decodes a base64 image payload. Accepts both raw base64
// and data URLs ("data:image/jpeg;base64,...."), which is what browser
// frontends send.
func DecodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty image data")
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, errors.New("malformed data URL")
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 image: %w", err)
	}
	return data, nil
}

// NormalizeImage decodes an image (JPEG, PNG or BMP), downscales it so the
// longest side fits within maxSize and re-encodes it as JPEG. Images already
// within bounds are only re-encoded, which keeps the payload shipped to the
// detector in one consistent format.
func NormalizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxSize || height > maxSize {
		newWidth, newHeight := fitWithin(width, height, maxSize)
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (width, height) down so the longest side equals maxSize,
// keeping the aspect ratio.
func fitWithin(width, height, maxSize int) (int, int) {
	if width > height {
		return maxSize, int(float64(height) * float64(maxSize) / float64(width))
	}
	return int(float64(width) * float64(maxSize) / float64(height)), maxSize
}
