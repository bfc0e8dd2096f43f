package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/pkg/models"
)

// ReplyParseError carries the raw model text so it can be logged for diagnosis
type ReplyParseError struct {
	Raw string
	Err error
}

func (e *ReplyParseError) Error() string {
	return fmt.Sprintf("invalid model reply: %v", e.Err)
}

func (e *ReplyParseError) Unwrap() error {
	return e.Err
}

// ParseReply decodes the model's JSON text. It does not attempt to repair malformed
// replies. Crop URLs of the returned items are cleared.
func ParseReply(text string) (*models.AnalysisResult, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, apperrors.NewUpstreamParseError(&ReplyParseError{
			Raw: text,
			Err: fmt.Errorf("expected a JSON object"),
		})
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, apperrors.NewUpstreamParseError(&ReplyParseError{Raw: text, Err: err})
	}

	if result.SpecificFeedback == nil {
		result.SpecificFeedback = []models.FeedbackItem{}
	}
	for i := range result.SpecificFeedback {
		result.SpecificFeedback[i].CroppedImageURL = nil
		if result.SpecificFeedback[i].InspirationKeywords == nil {
			result.SpecificFeedback[i].InspirationKeywords = []string{}
		}
	}
	return &result, nil
}
