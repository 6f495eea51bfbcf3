package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"subito_scrooper/config"
)

// objectPutter is the part of the S3 client the archive uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PageArchive keeps the raw HTML of every fetched page in S3-compatible
// storage so a bad extraction can be replayed.
type PageArchive struct {
	client objectPutter
	bucket string
	prefix string
}

func NewPageArchive(ctx context.Context, cfg config.S3Config) (*PageArchive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &PageArchive{client: client, bucket: cfg.Bucket, prefix: "pages"}, nil
}

// PageKey is pages/<site>/<run>/<page>.html.
func (a *PageArchive) PageKey(siteID string, runID uuid.UUID, page int) string {
	return fmt.Sprintf("%s/%s/%s/%03d.html", a.prefix, siteID, runID, page)
}

func (a *PageArchive) ArchivePage(ctx context.Context, siteID string, runID uuid.UUID, page int, sourceURL string, html []byte) (string, error) {
	key := a.PageKey(siteID, runID, page)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(html),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata:    map[string]string{"source-url": sourceURL},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}
