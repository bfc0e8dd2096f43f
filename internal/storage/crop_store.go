package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CropStore publishes cropped images and returns the URL clients fetch them from.
// Stores only ever add objects; names are unique so nothing is overwritten.
type CropStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// NewCropName builds a unique file name: millisecond timestamp plus a random suffix.
// The suffix keeps names unique for concurrent requests within the same millisecond.
func NewCropName(now time.Time, ext string) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}
