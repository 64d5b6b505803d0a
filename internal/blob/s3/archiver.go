package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quantline/ladderbot/internal/domain"
)

// minPartSize is the minimum allowed part size for S3 multipart uploads (5 MiB).
const minPartSize int64 = 5 * 1024 * 1024

// Archiver implements domain.SessionArchiver: it serializes a finished
// session to JSON and uploads it under sessions/YYYY/MM/DD/<session>.json.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchiver creates an Archiver uploading to the client's bucket under the
// given key prefix ("sessions" when empty).
func NewArchiver(c *Client, prefix string) *Archiver {
	if prefix == "" {
		prefix = "sessions"
	}
	return &Archiver{
		client: c.s3,
		bucket: c.bucket,
		prefix: prefix,
	}
}

// Archive uploads the session record and returns the object key.
func (a *Archiver) Archive(ctx context.Context, arch domain.SessionArchive) (string, error) {
	data, err := json.MarshalIndent(arch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal session: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json",
		a.prefix, time.Now().UTC().Format("2006/01/02"), arch.SessionID)

	if err := a.put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// put uploads a single object; payloads above the multipart threshold go
// through the upload manager.
func (a *Archiver) put(ctx context.Context, key string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("s3blob: read payload for %s: %w", key, err)
	}

	if int64(len(buf)) >= minPartSize {
		uploader := manager.NewUploader(a.client, func(u *manager.Uploader) {
			u.PartSize = minPartSize
		})
		_, err = uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("s3blob: multipart upload %s: %w", key, err)
		}
		return nil
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return nil
}
