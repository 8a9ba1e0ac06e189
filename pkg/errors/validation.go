package errors

import (
	"strings"
	"unicode"
)

// MaxTextLength bounds the document text accepted by the renderer.
// Longer input would run far past the bottom of the page anyway.
const MaxTextLength = 64 * 1024

// ValidateIntensity checks that a masking intensity is a percentage.
// Controls that clamp (sliders, key bindings) never reach this; it guards
// values typed on the command line or posted by hand.
func ValidateIntensity(n int) error {
	if n < 0 || n > 100 {
		return New(ErrCodeInvalidIntensity, "intensity must be between 0 and 100, got %d", n)
	}
	return nil
}

// ValidateText checks document text for size and stray control characters.
// Whitespace of any kind is allowed, form feeds and vertical tabs included.
func ValidateText(text string) error {
	if len(text) > MaxTextLength {
		return New(ErrCodeInvalidInput, "text too long (max %d bytes)", MaxTextLength)
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "text contains invalid control characters")
		}
	}
	return nil
}

// ValidateQuality checks a JPEG quality value.
func ValidateQuality(q int) error {
	if q < 1 || q > 100 {
		return New(ErrCodeInvalidQuality, "quality must be between 1 and 100, got %d", q)
	}
	return nil
}

// ValidateFilename validates a download or archive filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}

	if len(filename) > 255 {
		return New(ErrCodeInvalidFilename, "filename too long (max 255 characters)")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidFilename, "filename cannot contain path separators")
	}

	if filename == "." || filename == ".." || strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidFilename, "filename cannot be a hidden file")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
