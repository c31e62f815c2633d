package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tagexplorer/backend/internal/util"
)

// LinkExpiry is the lifetime of presigned upload and download links.
const LinkExpiry = 15 * time.Minute

// deleteBatch is the S3 limit for keys per DeleteObjects call.
const deleteBatch = 1000

// Blobs stores file contents in one S3 bucket. Presigned links are signed
// for the public endpoint when one is set, so browsers can reach them.
type Blobs struct {
	client         *s3.Client
	bucket         string
	publicEndpoint string
}

// NewS3Client creates a path-style S3 client from the AWS_* environment.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnvString("AWS_ENDPOINT", "")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// NewBlobs wraps client. publicEndpoint may be empty.
func NewBlobs(client *s3.Client, bucket, publicEndpoint string) *Blobs {
	return &Blobs{
		client:         client,
		bucket:         bucket,
		publicEndpoint: publicEndpoint,
	}
}

// NewBlobsFromEnv creates the client and reads AWS_BUCKET and
// AWS_PUBLIC_ENDPOINT.
func NewBlobsFromEnv(ctx context.Context) (*Blobs, error) {
	client, err := NewS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return NewBlobs(
		client,
		util.GetEnv("AWS_BUCKET"),
		util.GetEnvString("AWS_PUBLIC_ENDPOINT", ""),
	), nil
}

// Client returns the underlying S3 client.
func (b *Blobs) Client() *s3.Client {
	return b.client
}

// Bucket returns the bucket name.
func (b *Blobs) Bucket() string {
	return b.bucket
}

// Put uploads body under key.
func (b *Blobs) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// Get downloads the object stored under key.
func (b *Blobs) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	return buf.Bytes(), nil
}

// Delete removes the object under key. Missing objects are not an error.
func (b *Blobs) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// DeleteMany removes keys in batches. Per-key failures are joined into the
// returned error.
func (b *Blobs) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to delete objects: %w", err))
			continue
		}
		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("failed to delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}
	return errors.Join(errs...)
}

// PresignUpload returns a URL accepting one PUT of the object under key.
func (b *Blobs) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	presigner, prefix, err := b.presigner()
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	out, err := presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(LinkExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate upload link: %w", err)
	}
	return withPrefix(out.URL, prefix)
}

// PresignDownload returns a GET URL for key. A non-empty fileName sets the
// download file name.
func (b *Blobs) PresignDownload(ctx context.Context, key, fileName string) (string, error) {
	presigner, prefix, err := b.presigner()
	if err != nil {
		return "", err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("inline; filename=%q", fileName))
	}
	out, err := presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(LinkExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}
	return withPrefix(out.URL, prefix)
}

// presigner signs for the public endpoint so the signature matches the Host
// header the browser sends. The returned prefix is the path of the public
// endpoint, e.g. when S3 sits behind a reverse proxy under /s3.
func (b *Blobs) presigner() (*s3.PresignClient, string, error) {
	if b.publicEndpoint == "" {
		return s3.NewPresignClient(b.client), "", nil
	}

	publicURL, err := url.Parse(b.publicEndpoint)
	if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
		return nil, "", fmt.Errorf("invalid AWS_PUBLIC_ENDPOINT: %s", b.publicEndpoint)
	}
	prefix := strings.TrimSuffix(publicURL.Path, "/")
	base := fmt.Sprintf("%s://%s", publicURL.Scheme, publicURL.Host)

	opts := b.client.Options()
	client := s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  opts.Credentials,
		HTTPClient:   opts.HTTPClient,
		BaseEndpoint: aws.String(base),
		UsePathStyle: true,
	})
	return s3.NewPresignClient(client), prefix, nil
}

func withPrefix(rawURL, prefix string) (string, error) {
	if prefix == "" {
		return rawURL, nil
	}
	signed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse presigned url: %w", err)
	}
	signed.Path = prefix + signed.Path
	return signed.String(), nil
}
