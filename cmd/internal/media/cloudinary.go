package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	cloudinaryDefaultBase = "https://api.cloudinary.com/v1_1"
	uploadTimeout         = 30 * time.Second
)

// CloudinaryConfig holds the unsigned-upload settings.
type CloudinaryConfig struct {
	// BaseURL is the API root. Overridable for tests.
	BaseURL string
	// CloudName identifies the Cloudinary account.
	CloudName string
	// UploadPreset names an unsigned upload preset.
	UploadPreset string
}

// CloudinaryConfigFromEnv reads NEXUS_MEDIA_* settings. CloudName and
// UploadPreset empty means uploads are not configured.
func CloudinaryConfigFromEnv() CloudinaryConfig {
	cfg := CloudinaryConfig{
		BaseURL:      strings.TrimSpace(os.Getenv("NEXUS_MEDIA_BASE_URL")),
		CloudName:    strings.TrimSpace(os.Getenv("NEXUS_MEDIA_CLOUD_NAME")),
		UploadPreset: strings.TrimSpace(os.Getenv("NEXUS_MEDIA_UPLOAD_PRESET")),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cloudinaryDefaultBase
	}
	return cfg
}

// Enabled reports whether the config is complete enough to upload.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.UploadPreset != ""
}

// CloudinaryUploader ships images to Cloudinary's unsigned upload
// endpoint and returns the hosted secure URL.
type CloudinaryUploader struct {
	cfg    CloudinaryConfig
	client *resty.Client
}

// NewCloudinaryUploader builds an uploader. Errors when the config is
// incomplete.
func NewCloudinaryUploader(cfg CloudinaryConfig) (*CloudinaryUploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("media: cloudinary cloud name and upload preset are required")
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(uploadTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &CloudinaryUploader{cfg: cfg, client: client}, nil
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the data URI as the file payload. Cloudinary accepts
// base64 data URIs directly in the "file" form field.
func (u *CloudinaryUploader) Upload(ctx context.Context, dataURI string) (string, error) {
	if err := ValidateDataURI(dataURI); err != nil {
		return "", err
	}

	var ok cloudinaryUploadResponse
	var bad cloudinaryErrorResponse

	resp, err := u.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"file":          dataURI,
			"upload_preset": u.cfg.UploadPreset,
		}).
		SetResult(&ok).
		SetError(&bad).
		Post(fmt.Sprintf("/%s/image/upload", u.cfg.CloudName))
	if err != nil {
		return "", fmt.Errorf("media: upload request: %w", err)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(bad.Error.Message)
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("media: upload rejected: %s", msg)
	}

	url := ok.SecureURL
	if url == "" {
		url = ok.URL
	}
	if url == "" {
		return "", errors.New("media: upload response missing url")
	}
	return url, nil
}
