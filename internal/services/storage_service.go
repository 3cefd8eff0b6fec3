// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/models"
)

// StorageService copies archived products to S3 so the archive survives the
// database. Without credentials it is disabled and every call is a no-op.
type StorageService struct {
	s3Client s3iface.S3API
	bucket   string
}

type archiveSnapshot struct {
	models.DeletedProduct
	Image string `json:"image"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" || cfg.AWS.ArchiveBucket == "" {
		// Return service without S3 for local development
		return &StorageService{}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageServiceWithClient(s3.New(sess), cfg.AWS.ArchiveBucket), nil
}

func NewStorageServiceWithClient(client s3iface.S3API, bucket string) *StorageService {
	return &StorageService{s3Client: client, bucket: bucket}
}

func (s *StorageService) Enabled() bool {
	return s != nil && s.s3Client != nil
}

// PutArchiveSnapshot writes the archived record as JSON and returns its key.
func (s *StorageService) PutArchiveSnapshot(ctx context.Context, archived *models.DeletedProduct) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	body, err := json.Marshal(archiveSnapshot{
		DeletedProduct: *archived,
		Image:          archived.ImageDataURI(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode archive snapshot: %w", err)
	}

	key := archiveKey(archived)
	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive snapshot: %w", err)
	}

	return key, nil
}

func archiveKey(archived *models.DeletedProduct) string {
	at := archived.ArchivedAt.UTC()
	return fmt.Sprintf("deleted-products/%s/%d-%s.json",
		at.Format("2006/01/02"), archived.Number, at.Format(time.RFC3339))
}
