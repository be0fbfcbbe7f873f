package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"deep-research/config"
	"deep-research/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the subset of the S3 client the store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store writes <prefix><id>.md and <prefix><id>.json objects to one bucket.
type S3Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

func NewS3Store(api ObjectAPI, bucket, prefix string) *S3Store {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{api: api, bucket: bucket, prefix: prefix}
}

func (s *S3Store) mdKey(id string) string   { return s.prefix + id + ".md" }
func (s *S3Store) metaKey(id string) string { return s.prefix + id + ".json" }

func (s *S3Store) Save(ctx context.Context, rec ReportRecord) error {
	if err := CheckID(rec.ID); err != nil {
		return err
	}
	meta, err := encodeSidecar(rec)
	if err != nil {
		return err
	}
	if err := s.put(ctx, s.metaKey(rec.ID), meta, "application/json"); err != nil {
		return err
	}
	if err := s.put(ctx, s.mdKey(rec.ID), Markdown(rec), "text/markdown; charset=utf-8"); err != nil {
		return err
	}
	logger.WithModule(config.ModuleStore).WithFields(map[string]interface{}{
		"report_id": rec.ID,
		"bucket":    s.bucket,
	}).Info("report uploaded")
	return nil
}

func (s *S3Store) Load(ctx context.Context, id string) (ReportRecord, error) {
	if err := CheckID(id); err != nil {
		return ReportRecord{}, err
	}
	data, err := s.get(ctx, s.mdKey(id))
	if err != nil {
		return ReportRecord{}, s.mapErr(id, err)
	}
	rec := parseMarkdown(id, data)

	meta, err := s.get(ctx, s.metaKey(id))
	if err != nil {
		if isNotFound(err) {
			return rec, nil
		}
		return ReportRecord{}, err
	}
	if err := applySidecar(&rec, meta); err != nil {
		return ReportRecord{}, err
	}
	return rec, nil
}

func (s *S3Store) List(ctx context.Context) ([]ReportSummary, error) {
	out := make([]ReportSummary, 0)
	p := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".md") {
				continue
			}
			id := strings.TrimSuffix(path.Base(key), ".md")
			if CheckID(id) != nil {
				continue
			}
			data, err := s.get(ctx, key)
			if err != nil {
				logger.WithModule(config.ModuleStore).WithField("key", key).Warn("skip unreadable report")
				continue
			}
			rec := parseMarkdown(id, data)
			if rec.CreatedAt.IsZero() && obj.LastModified != nil {
				rec.CreatedAt = obj.LastModified.UTC()
			}
			out = append(out, ReportSummary{
				ID:        id,
				Question:  rec.Question,
				CreatedAt: rec.CreatedAt,
				FileSize:  aws.ToInt64(obj.Size),
			})
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if _, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.mdKey(id)),
	}); err != nil {
		return s.mapErr(id, err)
	}
	for _, key := range []string{s.mdKey(id), s.metaKey(id)} {
		if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1),
	})
	return err
}

func (s *S3Store) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Store) mapErr(id string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func isNotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
