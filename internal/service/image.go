package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/config"
)

// ImageService stores meal photos in S3 and hands out public URLs for the
// catalog's image_url field.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadMealImage stores the image bytes under a meal-scoped key and returns
// the object's public URL.
func (s *ImageService) UploadMealImage(ctx context.Context, mealID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("meals/%s/%s", mealID, uuid.New())

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload meal image: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("uploaded meal image for %s to %s", mealID, url)
	return url, nil
}

// PresignedMealImageURL returns a time-limited URL for a stored object,
// used when the bucket is not public.
func (s *ImageService) PresignedMealImageURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	return s.s3Config.GeneratePresignedURL(ctx, objectKey, expiration)
}
