package validation

import (
	"mime"
	"strings"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"

	"github.com/gabriel-vasile/mimetype"
)

// UploadValidator decides whether an uploaded blob is an image and which MIME type
// to send to the model.
type UploadValidator struct{}

// NewUploadValidator creates a new upload validator
func NewUploadValidator() *UploadValidator {
	return &UploadValidator{}
}

// ResolveMIMEType prefers the declared part header when it names an image type and
// falls back to content sniffing. Browsers often send application/octet-stream for
// dropped files.
func (v *UploadValidator) ResolveMIMEType(declared string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewInvalidRequestError(apperrors.MsgNoImage, nil)
	}

	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && isImage(mediaType) {
		return mediaType, nil
	}

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if isImage(m.String()) {
			return m.String(), nil
		}
	}
	return "", apperrors.NewInvalidRequestError(apperrors.MsgNotAnImage, nil)
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), "image/")
}
