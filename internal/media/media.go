// Package media defines the boundary around the hosted image upload service.
package media

import (
	"context"
)

//go:generate mockgen -source=media.go -destination=../mocks/media/mock_uploader.go -package=mock_media

// Uploader uploads an image and returns a retrievable URL for it.
type Uploader interface {
	UploadImage(ctx context.Context, image []byte) (string, error)
}
