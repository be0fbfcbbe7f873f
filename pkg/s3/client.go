package s3

import (
	"context"
	"errors"
	"fmt"

	"deep-research/config"

	"github.com/aws/aws-sdk-go-v2/aws"

	s3_config "github.com/aws/aws-sdk-go-v2/config"
	s3_credentials "github.com/aws/aws-sdk-go-v2/credentials"
	s3_provider "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NewClient builds an S3 client from the s3 config section. An endpoint switches
// to path-style addressing for S3-compatible servers such as MinIO.
func NewClient(ctx context.Context, cfg config.Config) (*s3_provider.Client, error) {
	c := cfg.S3
	region := c.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3_config.LoadOptions) error{
		s3_config.WithRegion(region),
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, s3_config.WithCredentialsProvider(
			s3_credentials.NewStaticCredentialsProvider(
				c.AccessKey,
				c.SecretKey,
				"",
			),
		))
	}

	awsCfg, err := s3_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := c.Endpoint
	client := s3_provider.NewFromConfig(awsCfg, func(o *s3_provider.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(endpoint) // e.g., http://localhost:9000
		}
	})
	return client, nil
}


// EnsureBucket creates bucket unless it already exists.
func EnsureBucket(ctx context.Context, client *s3_provider.Client, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3_provider.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	_, err := client.CreateBucket(ctx, &s3_provider.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}
