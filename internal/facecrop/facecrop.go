// Package facecrop turns detected face boxes into square crop windows.
package facecrop

import (
	"image"
	"math"
)

// Box is an axis-aligned face bounding box in source pixel coordinates,
// as returned by a detector.
type Box struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Window is a crop rectangle in source pixel coordinates. Windows produced
// by SelectWindow are square and lie fully inside the source image.
type Window struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Rect converts the window to an image.Rectangle.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+w.Width, w.Y+w.Height)
}

// SelectWindow picks the highest-confidence box and derives a square crop
// window around it: the side is max(width, height) of the box times
// faceScale, centered on the box center. Windows that would extend past an
// image edge are translated back inside rather than truncated, so the crop
// stays square and the later resize never distorts aspect ratio. A window
// larger than the image is clamped to the shorter image side and kept as
// close to the box center as fits.
//
// The second return value is false when boxes is empty or the image
// dimensions are unusable; the caller drops the image in that case.
func SelectWindow(imgWidth, imgHeight int, boxes []Box, faceScale float64) (Window, bool) {
	if imgWidth <= 0 || imgHeight <= 0 || len(boxes) == 0 {
		return Window{}, false
	}

	best := boxes[0]
	for _, b := range boxes[1:] {
		if b.Confidence > best.Confidence {
			best = b
		}
	}

	longest := best.Width
	if best.Height > longest {
		longest = best.Height
	}

	side := int(math.Round(float64(longest) * faceScale))
	if side < 1 {
		side = 1
	}
	if maxSide := min(imgWidth, imgHeight); side > maxSide {
		side = maxSide
	}

	// Center the square on the box center, then translate it back inside
	// the image bounds.
	centerX := float64(best.X) + float64(best.Width)/2
	centerY := float64(best.Y) + float64(best.Height)/2

	x := clamp(int(math.Round(centerX-float64(side)/2)), 0, imgWidth-side)
	y := clamp(int(math.Round(centerY-float64(side)/2)), 0, imgHeight-side)

	return Window{X: x, Y: y, Width: side, Height: side}, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
