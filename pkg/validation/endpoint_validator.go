package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
)

// EndpointValidator checks base URLs of the services we talk to
// (model endpoint, public object-store URLs).
type EndpointValidator struct {
	allowedSchemes []string
}

// NewEndpointValidator accepts http and https endpoints
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// Validate rejects empty URLs, unknown schemes, missing hosts and query strings
func (v *EndpointValidator) Validate(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return apperrors.NewInvalidRequestError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewInvalidRequestError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewInvalidRequestError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewInvalidRequestError("URL must have a valid host", nil)
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return apperrors.NewInvalidRequestError("base URL must not carry a query or fragment", nil)
	}

	return nil
}

func (v *EndpointValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}
