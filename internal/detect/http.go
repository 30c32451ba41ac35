package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/kozaktomas/booru-curator/internal/facecrop"
)

const (
	defaultDetectorURL = "http://localhost:9517"

	// maxUploadDim bounds the longer side of images sent to the service.
	// Larger sources are downscaled before upload and the returned boxes
	// are scaled back to source pixels.
	maxUploadDim = 1024

	uploadJPEGQuality = 90
)

// HTTPDetector calls a face detection service over HTTP. The service
// accepts a base64-encoded JPEG and responds with zero or more boxes.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector creates a detector client. An empty baseURL falls back to
// the default local service address.
func NewHTTPDetector(baseURL string, timeout time.Duration) *HTTPDetector {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	return &HTTPDetector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// detectRequest is the JSON body sent to the detection service.
type detectRequest struct {
	Image string `json:"image"` // base64 encoded JPEG
}

// detectResponse is the JSON body returned by the detection service.
type detectResponse struct {
	Faces []facecrop.Box `json:"faces"`
}

// Detect sends the image to the detection service and returns the detected
// face boxes in the source image's pixel coordinates.
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) ([]facecrop.Box, error) {
	upload := img
	scale := 1.0

	bounds := img.Bounds()
	longer := bounds.Dx()
	if bounds.Dy() > longer {
		longer = bounds.Dy()
	}
	if longer > maxUploadDim {
		scale = float64(longer) / float64(maxUploadDim)
		if bounds.Dx() >= bounds.Dy() {
			upload = imaging.Resize(img, maxUploadDim, 0, imaging.Lanczos)
		} else {
			upload = imaging.Resize(img, 0, maxUploadDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, upload, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return nil, fmt.Errorf("could not encode image for detection: %w", err)
	}

	body, err := json.Marshal(detectRequest{
		Image: base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal detection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detection service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not decode detection response: %w", err)
	}

	if scale == 1.0 {
		return parsed.Faces, nil
	}

	boxes := make([]facecrop.Box, len(parsed.Faces))
	for i, b := range parsed.Faces {
		boxes[i] = facecrop.Box{
			X:          int(math.Round(float64(b.X) * scale)),
			Y:          int(math.Round(float64(b.Y) * scale)),
			Width:      int(math.Round(float64(b.Width) * scale)),
			Height:     int(math.Round(float64(b.Height) * scale)),
			Confidence: b.Confidence,
		}
	}
	return boxes, nil
}
