package cropper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/internal/storage"
	"github.com/anime-shed/ui-critic-go/pkg/models"
	"github.com/anime-shed/ui-critic-go/pkg/validation"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const cropContentType = "image/png"

// Result is the outcome of cropping one feedback item: a URL or an error, never both
type Result struct {
	URL *string
	Err error
}

// Cropper cuts feedback regions out of the source screenshot and publishes them
type Cropper struct {
	store storage.CropStore
	now   func() time.Time
}

// New creates a cropper that publishes to store
func New(store storage.CropStore) *Cropper {
	return &Cropper{store: store, now: time.Now}
}

// Decode decodes the uploaded bytes. EXIF orientation is ignored so that coordinates
// refer to the stored pixel grid.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Crop extracts one region, encodes it as PNG and stores it under a fresh name
func (c *Cropper) Crop(ctx context.Context, src image.Image, coords models.CropCoordinates) (string, error) {
	bounds := src.Bounds()
	if err := validation.ValidateCrop(coords, bounds); err != nil {
		return "", err
	}

	cropped := imaging.Crop(src, coords.Rect().Add(bounds.Min))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return "", apperrors.NewCropError("failed to encode cropped image", err)
	}

	name := storage.NewCropName(c.now(), ".png")
	url, err := c.store.Save(ctx, name, buf.Bytes(), cropContentType)
	if err != nil {
		return "", apperrors.NewCropError("failed to store cropped image", err)
	}
	return url, nil
}

// CropAll maps every item to its crop result, in order, one at a time.
// A nil src fails every item. Failures never affect other items.
func (c *Cropper) CropAll(ctx context.Context, src image.Image, items []models.FeedbackItem) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = c.cropOne(ctx, src, item.CropCoordinates)
	}
	return results
}

func (c *Cropper) cropOne(ctx context.Context, src image.Image, coords models.CropCoordinates) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: apperrors.NewCropError(fmt.Sprintf("crop panicked: %v", r), nil)}
		}
	}()

	if src == nil {
		return Result{Err: apperrors.NewCropError("source image unavailable", nil)}
	}

	url, err := c.Crop(ctx, src, coords)
	if err != nil {
		return Result{Err: err}
	}
	return Result{URL: &url}
}
