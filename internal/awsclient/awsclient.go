// Package awsclient builds AWS SDK configs and clients for the install base
// and insights stores. Either store may be an S3-compatible endpoint (ECS)
// with static keys or plain AWS S3 on the default credential chain.
package awsclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/EMC-Underground/munger3/internal/blobstore"
	"github.com/EMC-Underground/munger3/internal/config"
)

// LoadConfig resolves an aws.Config for sc. Static keys, when present,
// replace the default credential chain.
func LoadConfig(ctx context.Context, sc config.StoreConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if sc.Region != "" {
		opts = append(opts, awsconfig.WithRegion(sc.Region))
	}
	if sc.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKeyID, sc.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewS3 builds an S3 client honouring sc's endpoint and addressing style.
func NewS3(cfg aws.Config, sc config.StoreConfig) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := strings.TrimSpace(sc.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		o.UsePathStyle = sc.PathStyle
	})
}

// OpenStore resolves sc's service binding, if any, and returns a blob store
// over its bucket.
func OpenStore(ctx context.Context, sc config.StoreConfig, timeout time.Duration) (*blobstore.S3Store, error) {
	if sc.CredsParam != "" {
		base, err := LoadConfig(ctx, config.StoreConfig{Region: sc.Region})
		if err != nil {
			return nil, err
		}
		b, err := ResolveBinding(ctx, ssm.NewFromConfig(base), sc.CredsParam)
		if err != nil {
			return nil, err
		}
		sc = b.Apply(sc)
	}

	cfg, err := LoadConfig(ctx, sc)
	if err != nil {
		return nil, err
	}
	return blobstore.NewS3Store(NewS3(cfg, sc), sc.Bucket, timeout), nil
}
