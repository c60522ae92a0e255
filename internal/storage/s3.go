// Package storage uploads generated documents to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"auto_service_backend/internal/models"
	"auto_service_backend/pkg/utils"
)

// S3Options configures the bucket client. Endpoint is optional and points the
// client at R2, MinIO or another S3-compatible service.
type S3Options struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Uploader is the part of *s3.Client the exporter needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportRenderer draws a daily report document.
type ReportRenderer interface {
	DailyReportPDF(w io.Writer, label string, orders []models.Order) error
}

// NewS3Client builds a client with static credentials.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3 client: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ReportArchive stores each materialized daily report as a PDF.
type ReportArchive struct {
	client   Uploader
	renderer ReportRenderer
	bucket   string
	prefix   string
}

func NewReportArchive(client Uploader, renderer ReportRenderer, bucket, prefix string) *ReportArchive {
	return &ReportArchive{client: client, renderer: renderer, bucket: bucket, prefix: prefix}
}

// ReportKey is the object key of the report for date (YYYY-MM-DD).
func (a *ReportArchive) ReportKey(date string) string {
	prefix := strings.Trim(a.prefix, "/")
	if prefix == "" {
		return date + ".pdf"
	}
	return path.Join(prefix, date+".pdf")
}

// ExportDailyReport renders the day's orders and uploads the document.
func (a *ReportArchive) ExportDailyReport(ctx context.Context, summary models.DaySummary, orders []models.Order) error {
	var buf bytes.Buffer
	if err := a.renderer.DailyReportPDF(&buf, summary.Date, orders); err != nil {
		return fmt.Errorf("rendering report %s: %w", summary.Date, err)
	}

	key := a.ReportKey(summary.Date)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"orders":  fmt.Sprintf("%d", summary.OrderCount),
			"revenue": summary.Revenue.StringFixed(2),
			"profit":  summary.Profit.StringFixed(2),
		},
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	utils.LogInfo("Daily report uploaded", map[string]interface{}{
		"bucket": a.bucket,
		"key":    key,
		"bytes":  buf.Len(),
	})
	return nil
}
