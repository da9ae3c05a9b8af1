package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the archive needs
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveConfig points at an S3 compatible bucket such as Cloudflare R2
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// ArchiveSink stores the rendered HTML and the digest JSON in object storage
type ArchiveSink struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewArchiveSink(ctx context.Context, cfg ArchiveConfig) (*ArchiveSink, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return NewArchiveSinkWithClient(client, cfg.Bucket), nil
}

func NewArchiveSinkWithClient(client ObjectPutter, bucket string) *ArchiveSink {
	return &ArchiveSink{client: client, bucket: bucket, prefix: "digests"}
}

func (a *ArchiveSink) Name() string { return "archive" }

// Key returns the object key for a digest file with the given extension
func (a *ArchiveSink) Key(d Delivery, ext string) string {
	return path.Join(a.prefix, d.Digest.Date.UTC().Format("2006/01/02"), d.Digest.ID+ext)
}

func (a *ArchiveSink) Deliver(ctx context.Context, d Delivery) error {
	data, err := json.Marshal(d.Digest)
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}

	objects := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{a.Key(d, ".json"), data, "application/json"},
		{a.Key(d, ".html"), []byte(d.HTML), "text/html; charset=utf-8"},
	}
	for _, obj := range objects {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(obj.key),
			Body:        bytes.NewReader(obj.body),
			ContentType: aws.String(obj.contentType),
		})
		if err != nil {
			return fmt.Errorf("put %s: %w", obj.key, err)
		}
	}
	return nil
}
