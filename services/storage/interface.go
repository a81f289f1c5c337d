package storage

import "context"

// Category names the destination bucket for an upload.
type Category string

const (
	CategoryCoverImage Category = "cover-images"
	CategoryUserPhoto  Category = "user-photos"
	CategoryPitchVideo Category = "pitch-videos"
	CategoryPitchPhoto Category = "pitch-photos"
)

// Service defines the interface for blob storage operations.
type Service interface {
	// Upload stores the payload under the category's bucket and returns the
	// public URL of the stored asset.
	Upload(ctx context.Context, category Category, fileName string, data []byte) (string, error)
	// Delete removes an asset by its public identifier.
	Delete(ctx context.Context, publicID string) error
}
