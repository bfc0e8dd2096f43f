package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// AnalysisResult is the critique returned by the model, enriched with crop URLs.
// It only lives for the duration of one HTTP response.
type AnalysisResult struct {
	OverallFeedback  string         `json:"overallFeedback"`
	SpecificFeedback []FeedbackItem `json:"specificFeedback"`
}

// FeedbackItem is one critique of a specific UI element
type FeedbackItem struct {
	Critique            string          `json:"critique"`
	CropCoordinates     CropCoordinates `json:"cropCoordinates"`
	InspirationKeywords []string        `json:"inspirationKeywords"`

	// CroppedImageURL is always serialized; null marks a failed crop
	CroppedImageURL *string `json:"croppedImageUrl"`
}

// CropCoordinates is a pixel bounding box with its origin at the image's top-left corner
type CropCoordinates struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// invalid is set when the model sent something that is not a usable box
	invalid error
}

// Err reports why the decoded coordinates are unusable, or nil
func (c CropCoordinates) Err() error {
	return c.invalid
}

// Rect converts the coordinates into an image rectangle.
// Callers must validate Width and Height first: image.Rect swaps inverted corners.
func (c CropCoordinates) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

func (c CropCoordinates) String() string {
	return fmt.Sprintf("x:%d y:%d width:%d height:%d", c.X, c.Y, c.Width, c.Height)
}

// UnmarshalJSON accepts integers, floats (truncated) and numeric strings.
// It never fails: a malformed box only spoils its own item, so the problem is
// recorded and reported by Err.
func (c *CropCoordinates) UnmarshalJSON(data []byte) error {
	*c = CropCoordinates{}

	var raw struct {
		X      json.RawMessage `json:"x"`
		Y      json.RawMessage `json:"y"`
		Width  json.RawMessage `json:"width"`
		Height json.RawMessage `json:"height"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		c.invalid = fmt.Errorf("cropCoordinates: %w", err)
		return nil
	}

	fields := []struct {
		name string
		src  json.RawMessage
		dst  *int
	}{
		{"x", raw.X, &c.X},
		{"y", raw.Y, &c.Y},
		{"width", raw.Width, &c.Width},
		{"height", raw.Height, &c.Height},
	}
	for _, f := range fields {
		v, err := parseCoordinate(f.src)
		if err != nil {
			*c = CropCoordinates{invalid: fmt.Errorf("cropCoordinates.%s: %w", f.name, err)}
			return nil
		}
		*f.dst = v
	}
	return nil
}

func parseCoordinate(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("out of range: %q", text)
	}
	return int(f), nil
}
