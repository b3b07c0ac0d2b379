// Package media uploads user-provided images to an external store and
// returns durable URLs. Message and profile pictures arrive as base64
// data URIs and leave as hosted HTTPS URLs.
package media

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidImage marks payloads that are not acceptable image data URIs.
var ErrInvalidImage = errors.New("media: invalid image payload")

// Uploader stores one image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

// ValidateDataURI checks the shape of an image data URI before it is
// shipped to the upload service.
func ValidateDataURI(s string) error {
	if !strings.HasPrefix(s, "data:image/") {
		return ErrInvalidImage
	}
	if !strings.Contains(s, ";base64,") {
		return ErrInvalidImage
	}
	return nil
}

// PassthroughUploader returns the input unchanged. Used when no upload
// service is configured; clients receive the data URI back as the image
// URL, which browsers render natively.
type PassthroughUploader struct{}

func (PassthroughUploader) Upload(_ context.Context, dataURI string) (string, error) {
	if err := ValidateDataURI(dataURI); err != nil {
		return "", err
	}
	return dataURI, nil
}
