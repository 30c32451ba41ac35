// Package detect provides face detection for source images. The detector is
// a capability interface so the pipeline never depends on a specific model;
// the default implementation talks to an HTTP detection service.
package detect

import (
	"context"
	"image"

	"github.com/kozaktomas/booru-curator/internal/facecrop"
)

// Detector finds faces in an image. Implementations return zero or more
// boxes in the source image's pixel coordinates; an empty slice means no
// usable face was found and is not an error.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]facecrop.Box, error)
}
