package s3

import (
	"context"
	"fmt"
	"time"

	"triptrek-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignAPI is the subset of the S3 presign client used for uploads
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Presigner issues pre-signed PUT URLs for the image bucket
type Presigner struct {
	client PresignAPI
	bucket string
	region string
}

// NewPresigner creates a presigner for bucket in region
func NewPresigner(client PresignAPI, bucket, region string) *Presigner {
	return &Presigner{client: client, bucket: bucket, region: region}
}

// NewPresignerFromClient wraps a regular S3 client
func NewPresignerFromClient(client *s3.Client, bucket, region string) *Presigner {
	return NewPresigner(s3.NewPresignClient(client), bucket, region)
}

var _ ports.UploadSigner = (*Presigner)(nil)

// PresignPut returns a URL the browser can PUT the object to directly
func (p *Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign put for %s: %w", key, err)
	}
	return req.URL, nil
}

// ObjectURL returns the virtual-hosted URL the object is served from
func (p *Presigner) ObjectURL(key string) string {
	return ObjectURL(p.bucket, p.region, key)
}

// ObjectURL returns the virtual-hosted URL of key in bucket
func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
