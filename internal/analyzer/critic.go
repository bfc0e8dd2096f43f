package analyzer

import (
	"context"

	"github.com/anime-shed/ui-critic-go/pkg/models"
)

// Image is an uploaded screenshot as sent to the model
type Image struct {
	Data     []byte
	MIMEType string
}

// Critic asks a vision model to critique a UI screenshot.
//
// Implementations return the parsed reply with CroppedImageURL left nil on every item.
// Errors are classified with the errors package: a reply that is not valid JSON is an
// upstream_parse error, a missed deadline surfaces as context.DeadlineExceeded.
type Critic interface {
	Critique(ctx context.Context, img Image) (*models.AnalysisResult, error)
}
