package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Stager puts an uploaded file somewhere the report service can read it from
// and returns that location plus a cleanup function.
type Stager interface {
	Stage(ctx context.Context, fh *multipart.FileHeader) (string, func(), error)
}

// LocalStager writes uploads to dir, named by content hash.
type LocalStager struct {
	dir string
}

func NewLocalStager(dir string) *LocalStager {
	return &LocalStager{dir: dir}
}

func (s *LocalStager) Stage(ctx context.Context, fh *multipart.FileHeader) (string, func(), error) {
	noop := func() {}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", noop, fmt.Errorf("failed to create upload dir: %w", err)
	}
	src, err := fh.Open()
	if err != nil {
		return "", noop, fmt.Errorf("cannot open file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, "upload-*.tmp")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), src); err != nil {
		return "", noop, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", noop, err
	}

	finalPath := filepath.Join(s.dir, uploadName(hasher.Sum(nil), fh.Filename))
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", noop, fmt.Errorf("failed to finalize file: %w", err)
	}
	return finalPath, func() { _ = os.Remove(finalPath) }, nil
}

// UploadAPI is the subset of the S3 client S3Stager needs.
type UploadAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Stager uploads under prefix and hands out s3:// URLs.
type S3Stager struct {
	api    UploadAPI
	bucket string
	prefix string
}

func NewS3Stager(api UploadAPI, bucket, prefix string) *S3Stager {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Stager{api: api, bucket: bucket, prefix: prefix}
}

func (s *S3Stager) Stage(ctx context.Context, fh *multipart.FileHeader) (string, func(), error) {
	noop := func() {}
	src, err := fh.Open()
	if err != nil {
		return "", noop, fmt.Errorf("cannot open file: %w", err)
	}
	defer src.Close()

	// The body is read twice (hash, then upload), so spool it to a temp file.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", noop, fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), src); err != nil {
		return "", noop, fmt.Errorf("stream copy: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", noop, fmt.Errorf("seek: %w", err)
	}

	key := s.prefix + uploadName(hasher.Sum(nil), fh.Filename)
	if _, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          tmp,
		ContentLength: aws.Int64(fh.Size),
	}); err != nil {
		return "", noop, fmt.Errorf("put object: %w", err)
	}

	cleanup := func() {
		_, _ = s.api.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), cleanup, nil
}

// uploadName is <sha256>-<nonce><ext>; the nonce keeps concurrent uploads of
// the same bytes from sharing (and deleting) one staged file.
func uploadName(sum []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	return hex.EncodeToString(sum) + "-" + uuid.NewString()[:8] + ext
}
