package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveClient stores pipeline run reports and normalized-batch snapshots
// in S3. The archive is an audit trail, not part of the serving path: the
// pipeline treats upload failures as warnings and a missing bucket disables
// the client entirely.
type ArchiveClient struct {
	client     *s3.Client
	bucketName string
	region     string
}

// ArchiveUploadResult describes one stored object.
type ArchiveUploadResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	PublicURL  string    `json:"public_url"`
}

// NewArchiveClient creates an archive client for the given bucket. Returns
// (nil, nil) for an empty bucket name so callers can treat the archive as
// optional without a separate flag.
func NewArchiveClient(ctx context.Context, bucketName string) (*ArchiveClient, error) {
	if bucketName == "" {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &ArchiveClient{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
		region:     cfg.Region,
	}, nil
}

// UploadRunReport stores a pipeline run report under runs/<timestamp>.json.
func (a *ArchiveClient) UploadRunReport(ctx context.Context, report any) (*ArchiveUploadResult, error) {
	key := fmt.Sprintf("runs/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	return a.uploadJSON(ctx, report, key)
}

// BackupOutings stores the normalized batch under backups/outings-<timestamp>.json.
func (a *ArchiveClient) BackupOutings(ctx context.Context, rows any) (*ArchiveUploadResult, error) {
	key := fmt.Sprintf("backups/outings-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	return a.uploadJSON(ctx, rows, key)
}

func (a *ArchiveClient) uploadJSON(ctx context.Context, payload any, key string) (*ArchiveUploadResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal archive payload: %w", err)
	}

	key = strings.TrimPrefix(key, "/")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"uploaded-by": "marseille-outings-aggregator",
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to S3: %w", err)
	}

	return &ArchiveUploadResult{
		Key:        key,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		PublicURL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucketName, a.region, key),
	}, nil
}
