// Package storage keeps published graph bundles in S3-compatible object
// storage so the viewer frontend can serve them without touching the
// database.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/repolens/backend/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// BundleKey is the object key of a case's published graph bundle.
func BundleKey(caseID string) string {
	return fmt.Sprintf("cases/%s/published.json", caseID)
}

// PutBundle uploads a published graph bundle, overwriting any previous
// one for the case.
func PutBundle(ctx context.Context, client *s3.Client, caseID string, data []byte) error {
	bucket := util.GetEnv("AWS_BUCKET")
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(BundleKey(caseID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload bundle: %w", err)
	}
	return nil
}

// GetBundle downloads a case's published graph bundle.
func GetBundle(ctx context.Context, client *s3.Client, caseID string) ([]byte, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(BundleKey(caseID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return data, nil
}

// DeleteBundle removes a case's published graph bundle.
func DeleteBundle(ctx context.Context, client *s3.Client, caseID string) error {
	bucket := util.GetEnv("AWS_BUCKET")
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(BundleKey(caseID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}
	return nil
}

// GenerateDownloadLink presigns a time-limited GET for a bundle so the
// frontend can hand it straight to the browser.
func GenerateDownloadLink(ctx context.Context, client *s3.Client, caseID string) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	presigner := s3.NewPresignClient(client)

	out, err := presigner.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(BundleKey(caseID)),
		},
		s3.WithPresignExpires(15*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}
	return out.URL, nil
}
