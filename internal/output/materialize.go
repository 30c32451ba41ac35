package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadImage opens a source image. Decoders for JPEG, PNG, GIF, BMP and WebP
// are registered; files the standard decoders reject get one more chance
// through the explicit WebP decoder, which handles some encoder quirks.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err == nil {
		return img, nil
	}

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		f, ferr := os.Open(path)
		if ferr == nil {
			defer f.Close()
			if img, werr := webp.Decode(f); werr == nil {
				return img, nil
			}
		}
	}

	return nil, fmt.Errorf("could not open image %s: %w", path, err)
}

// CropResize crops the image to the given rectangle and resizes the result
// to a size×size square. An empty rectangle means no crop. Fill keeps the
// aspect ratio and center-crops the remainder, so non-square inputs never
// come out distorted.
func CropResize(img image.Image, rect image.Rectangle, size int) image.Image {
	if !rect.Empty() {
		img = imaging.Crop(img, rect)
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// WriteImage encodes the image as JPEG at path. The encode goes to a
// temporary file in the same directory first and is renamed into place, so
// an interrupted run never leaves a half-written output that a later run
// would mistake for a finished one.
func WriteImage(img image.Image, path string) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not create temp file for %s: %w", path, err)
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not encode image %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not finish writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not move image into place: %w", err)
	}
	return nil
}

// Link creates a symlink at target pointing to an existing processed copy.
func Link(source, target string) error {
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("could not link %s: %w", target, err)
	}
	return nil
}
