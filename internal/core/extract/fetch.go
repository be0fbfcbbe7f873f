package extract

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to download source documents.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FetchToLocalTemp copies a local path or an s3://bucket/key object into a temporary
// file that keeps the source extension, and returns a cleanup function.
func FetchToLocalTemp(ctx context.Context, cli ObjectGetter, filePath string) (string, func(), error) {
	noop := func() {}
	pattern := "source-*" + strings.ToLower(filepath.Ext(filePath))

	var src io.ReadCloser
	if strings.HasPrefix(filePath, "s3://") {
		if cli == nil {
			return "", noop, fmt.Errorf("%w: no s3 client for %s", ErrExtraction, filePath)
		}
		u, err := url.Parse(filePath)
		if err != nil {
			return "", noop, err
		}
		out, err := cli.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return "", noop, fmt.Errorf("get %s: %w", filePath, err)
		}
		src = out.Body
	} else {
		abs := filePath
		if !filepath.IsAbs(abs) {
			cwd, _ := os.Getwd()
			abs = filepath.Join(cwd, filePath)
		}
		f, err := os.Open(abs)
		if err != nil {
			return "", noop, err
		}
		src = f
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", noop, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", noop, err
	}
	return tmp.Name(), cleanup, nil
}
