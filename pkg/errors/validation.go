package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// ImageExtensions lists the source image extensions threadart can decode.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff", ".svg"}

// ValidateImageFilename checks that an uploaded or local file name is a plain
// base name with a supported image extension.
func ValidateImageFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidImage, "image file name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidImage, "image file name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidImage, "image file name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidImage, "image file name cannot contain path separators")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(ImageExtensions, ext) {
		return New(ErrCodeInvalidImage, "unsupported image format: %q", ext)
	}
	return nil
}

// ValidatePath validates an output path given on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateRange checks that v lies in [lo, hi].
func ValidateRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return New(ErrCodeInvalidInput, "%s must be between %g and %g, got %g", name, lo, hi, v)
	}
	return nil
}
