// Package cloudinary implements image uploads against the Cloudinary
// unsigned upload endpoint.
package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/fendylo/study-snap/internal/config"
)

type Uploader struct {
	httpClient   *resty.Client
	uploadPreset string
}

func NewUploader(cfg config.CloudinaryConfig) *Uploader {
	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName))
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &Uploader{
		httpClient:   client,
		uploadPreset: cfg.UploadPreset,
	}
}

// NewUploaderWithBaseURL is used by tests to point the uploader at a local server.
func NewUploaderWithBaseURL(baseURL, uploadPreset string, timeout time.Duration) *Uploader {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &Uploader{
		httpClient:   client,
		uploadPreset: uploadPreset,
	}
}

func (uploader *Uploader) Close() error {
	return uploader.httpClient.Close()
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// UploadImage posts the image as multipart form data with the configured
// unsigned upload preset and returns the secure URL of the stored image.
func (uploader *Uploader) UploadImage(ctx context.Context, image []byte) (string, error) {
	response, err := uploader.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(image)).
		SetFormData(map[string]string{
			"upload_preset": uploader.uploadPreset,
		}).
		SetResult(&uploadResponse{}).
		Post("/image/upload")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*uploadResponse)
	if responseBody == nil || responseBody.SecureURL == "" {
		return "", fmt.Errorf("missing secure_url in response: %s", response.String())
	}
	return responseBody.SecureURL, nil
}
