package validation

import (
	"encoding/json"
	"image"
	"testing"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/pkg/models"
)

func TestValidateCrop(t *testing.T) {
	bounds := image.Rect(0, 0, 400, 300)

	tests := []struct {
		name      string
		coords    models.CropCoordinates
		bounds    image.Rectangle
		expectErr bool
	}{
		{"inside", models.CropCoordinates{X: 10, Y: 20, Width: 50, Height: 20}, bounds, false},
		{"whole image", models.CropCoordinates{Width: 400, Height: 300}, bounds, false},
		{"touches bottom right", models.CropCoordinates{X: 350, Y: 250, Width: 50, Height: 50}, bounds, false},
		{"zero width", models.CropCoordinates{X: 10, Y: 10, Width: 0, Height: 10}, bounds, true},
		{"negative height", models.CropCoordinates{X: 10, Y: 10, Width: 10, Height: -5}, bounds, true},
		{"negative origin", models.CropCoordinates{X: -1, Y: 0, Width: 10, Height: 10}, bounds, true},
		{"past right edge", models.CropCoordinates{X: 395, Y: 0, Width: 10, Height: 10}, bounds, true},
		{"entirely outside", models.CropCoordinates{X: 500, Y: 500, Width: 10, Height: 10}, bounds, true},
		{"offset bounds", models.CropCoordinates{X: 0, Y: 0, Width: 10, Height: 10}, image.Rect(5, 5, 15, 15), false},
		{"offset bounds overflow", models.CropCoordinates{X: 1, Y: 0, Width: 10, Height: 10}, image.Rect(5, 5, 15, 15), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCrop(tt.coords, tt.bounds)
			if tt.expectErr && err == nil {
				t.Fatalf("Expected error for %s", tt.coords)
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("Expected no error for %s, got: %v", tt.coords, err)
			}
			if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeCrop) {
				t.Errorf("Expected crop error, got: %v", err)
			}
		})
	}
}

func TestValidateCrop_UndecodableCoordinates(t *testing.T) {
	inputs := []string{
		`{"x":"left","y":0,"width":10,"height":10}`,
		`{"x":0,"y":0,"width":true,"height":10}`,
		`[10,20,50,20]`,
		`"10,20,50,20"`,
	}

	for _, input := range inputs {
		var coords models.CropCoordinates
		if err := json.Unmarshal([]byte(input), &coords); err != nil {
			t.Fatalf("Expected lenient decoding of %s, got: %v", input, err)
		}

		err := ValidateCrop(coords, image.Rect(0, 0, 400, 300))
		if err == nil {
			t.Errorf("Expected error for %s", input)
			continue
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeCrop) {
			t.Errorf("Expected crop error for %s, got: %v", input, err)
		}
	}
}
