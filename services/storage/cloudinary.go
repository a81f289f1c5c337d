package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryService implements Service on top of Cloudinary, mapping each
// bucket category to a folder.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryService initializes a Cloudinary-backed storage service.
func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// Upload stores the payload in the category's folder and returns its URL.
func (s *CloudinaryService) Upload(ctx context.Context, category Category, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload for %s", fileName)
	}
	uploadParams := uploader.UploadParams{
		Folder:   string(category),
		PublicID: strings.TrimSuffix(fileName, extension(fileName)),
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fileName, err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no URL returned for %s", fileName)
	}
	return result.SecureURL, nil
}

// Delete removes an asset by its public ID.
func (s *CloudinaryService) Delete(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}

func extension(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		return fileName[idx:]
	}
	return ""
}

// DecodeDataURI converts a base64 data-URI preview string (as held for cover
// image and profile photo drafts) into its binary payload. A bare base64
// string without the "data:" prefix is accepted too.
func DecodeDataURI(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, nil
}
