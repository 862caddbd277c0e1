package scriptgen

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

var (
	// ErrImageRequired is returned when no image was uploaded.
	ErrImageRequired = errors.New("image is required")

	// ErrImageTooLarge is returned when the upload exceeds the configured limit.
	ErrImageTooLarge = errors.New("image exceeds maximum size")

	// ErrUnsupportedImage is returned when the upload is not a PNG or JPEG image.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrInvalidBaseURL is returned when the base URL cannot be injected safely.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// ValidationConfig holds the limits applied to user input.
type ValidationConfig struct {
	MaxImageBytes    int64
	MaxBaseURLLength int
}

// DefaultValidationConfig returns the default validation configuration.
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxImageBytes:    10 << 20,
		MaxBaseURLLength: 2048,
	}
}

// ValidateImage checks an uploaded design image. The sniffed type only gates
// the upload; the model is always told the image is PNG.
func ValidateImage(data []byte, config *ValidationConfig) error {
	if len(data) == 0 {
		return ErrImageRequired
	}
	if config.MaxImageBytes > 0 && int64(len(data)) > config.MaxImageBytes {
		return fmt.Errorf("%w of %d bytes", ErrImageTooLarge, config.MaxImageBytes)
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("%w: %s (png, jpg and jpeg are accepted)", ErrUnsupportedImage, contentType)
	}
	return nil
}

// NormalizeBaseURL trims the base URL and strips control characters. An empty
// result is valid and disables injection. Anything else must be an absolute
// http(s) URL without quotes, since it ends up inside a Python string literal.
func NormalizeBaseURL(raw string, config *ValidationConfig) (string, error) {
	s := removeControlCharacters(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}

	if config.MaxBaseURLLength > 0 && len(s) > config.MaxBaseURLLength {
		return "", fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidBaseURL, config.MaxBaseURLLength)
	}
	if strings.ContainsAny(s, `"'\`) {
		return "", fmt.Errorf("%w: must not contain quotes or backslashes", ErrInvalidBaseURL)
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}

	return s, nil
}

func removeControlCharacters(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
