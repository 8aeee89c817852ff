package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultDownloadExpiry = 15 * time.Minute

// ObjectStore resolves and signs download URLs for interview artifacts.
// The bucket layout is one prefix per interview:
// interviews/{interview_id}/recording.mp4 and
// interviews/{interview_id}/transcript.json.
type ObjectStore interface {
	RecordingKey(interviewID string) string
	TranscriptKey(interviewID string) string
	PresignDownload(ctx context.Context, key string) (string, error)
}

// S3ObjectStore signs time-limited download URLs against an S3-compatible
// bucket.
type S3ObjectStore struct {
	bucket  string
	presign *s3.PresignClient
	expiry  time.Duration
}

func NewS3ObjectStore(cfg StorageConfig) *S3ObjectStore {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ObjectStore{
		bucket:  cfg.Bucket,
		presign: s3.NewPresignClient(client),
		expiry:  defaultDownloadExpiry,
	}
}

func (s *S3ObjectStore) RecordingKey(interviewID string) string {
	return fmt.Sprintf("interviews/%s/recording.mp4", interviewID)
}

func (s *S3ObjectStore) TranscriptKey(interviewID string) string {
	return fmt.Sprintf("interviews/%s/transcript.json", interviewID)
}

// PresignDownload returns a signed GET URL for the given object key.
func (s *S3ObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("storage bucket not configured")
	}

	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return request.URL, nil
}
