package validation

import (
	"fmt"
	"image"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/pkg/models"
)

// ValidateCrop checks that the coordinates decoded cleanly, have a positive size and
// lie entirely within bounds. Coordinates are relative to the top-left corner of bounds.
func ValidateCrop(c models.CropCoordinates, bounds image.Rectangle) error {
	if err := c.Err(); err != nil {
		return apperrors.NewCropError("crop coordinates are not usable", err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return apperrors.NewCropError(
			fmt.Sprintf("crop size must be positive (%s)", c), nil)
	}
	if c.X < 0 || c.Y < 0 {
		return apperrors.NewCropError(
			fmt.Sprintf("crop origin must not be negative (%s)", c), nil)
	}

	rect := c.Rect().Add(bounds.Min)
	if !rect.In(bounds) {
		return apperrors.NewCropError(
			fmt.Sprintf("crop region %v outside image bounds %v", rect, bounds), nil)
	}
	return nil
}
