package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// MimeTypeJPEG is a motion-JPEG stream carried one frame per RTP burst.
const MimeTypeJPEG = "video/jpeg"

// Encoder turns a frame into one encoded sample.
type Encoder interface {
	MimeType() string
	Encode(img image.Image) ([]byte, error)
}

type JPEGEncoder struct {
	Quality int
}

func NewJPEGEncoder(quality int) *JPEGEncoder {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &JPEGEncoder{Quality: quality}
}

func (e *JPEGEncoder) MimeType() string { return MimeTypeJPEG }

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
