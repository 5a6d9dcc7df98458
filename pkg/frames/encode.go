package frames

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// EncodedFrame is one compressed still image bound for the judging model.
// Index is the source frame index; frames keep sampling order.
type EncodedFrame struct {
	Data     []byte
	MIMEType string
	Index    int
	Width    int
	Height   int
}

// resizeKeepRatio scales the frame so the short side lands on targetShort,
// preserving aspect ratio. Sources whose long side is already under
// maxLong are returned untouched; frames are never upscaled.
func resizeKeepRatio(img image.Image, targetShort, maxLong int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	long := w
	short := h
	if h > w {
		long, short = h, w
	}
	if short == 0 || long < maxLong {
		return img
	}

	scale := float64(targetShort) / float64(short)
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
