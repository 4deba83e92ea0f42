package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/config"
)

// ImageService stores uploaded recipe images in S3 and hands back public
// object URLs. Recipes persist only the URL.
type ImageService struct {
	client *s3.Client
	bucket string
	region string
}

// NewImageService initializes the S3 client from the environment
func NewImageService(ctx context.Context, cfg *config.Config) (*ImageService, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}

	return &ImageService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		region: cfg.AWSRegion,
	}, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoreRecipeImage accepts either a plain URL, which is returned unchanged,
// or a base64 data URI, which is decoded and uploaded.
func (s *ImageService) StoreRecipeImage(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	contentType, data, err := decodeDataURI(image)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %s", ErrValidation, contentType)
	}

	key := fmt.Sprintf("recipes/images/%s%s", uuid.New().String(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	log.Printf("[ImageService] Stored recipe image at %s", url)
	return url, nil
}

func decodeDataURI(uri string) (string, []byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", nil, fmt.Errorf("unsupported data URI encoding %q", encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %v", err)
	}
	return contentType, data, nil
}
