package covers

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// jpegQuality is the quality covers are re-encoded with
const jpegQuality = 90

// Scale decodes a JPEG or PNG cover, shrinks it to height pixels keeping the
// aspect ratio, and re-encodes it as JPEG. Images already at or below height
// are re-encoded unchanged.
func Scale(data []byte, height int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if height > 0 && bounds.Dy() > height {
		img = imaging.Resize(img, 0, height, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
