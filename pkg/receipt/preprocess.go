package receipt

import (
	"os"

	"github.com/disintegration/imaging"
)

// prepareImage writes a grayscale, upscaled copy of the receipt to a temp
// file for Tesseract. Small photos are resized up: Tesseract accuracy drops
// sharply below ~800px of height. Returns the path to feed the OCR client
// and a cleanup func; on any preprocessing failure it falls back to the
// original path.
func prepareImage(path string) (string, func()) {
	img, err := imaging.Open(path)
	if err != nil {
		return path, func() {}
	}
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 800 {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}
	tmpFile, err := os.CreateTemp("", "receipt-*.png")
	if err != nil {
		return path, func() {}
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	if err := imaging.Save(gray, tmp); err != nil {
		_ = os.Remove(tmp)
		return path, func() {}
	}
	return tmp, func() { _ = os.Remove(tmp) }
}
