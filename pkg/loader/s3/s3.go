package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tagexplorer/backend/pkg/loader"
)

// GetObjectAPI is the part of the S3 client the loader needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3GraphFileLoader is a GraphFileLoader implementation that loads file
// contents from an S3 bucket. FilePath is the object key.
type S3GraphFileLoader struct {
	bucket string
	client GetObjectAPI

	cache loader.Cache
}

// NewS3GraphFileLoaderWithClient creates a new S3GraphFileLoader using an
// existing client.
func NewS3GraphFileLoaderWithClient(bucket string, client GetObjectAPI) *S3GraphFileLoader {
	return &S3GraphFileLoader{
		bucket: bucket,
		client: client,
	}
}

// GetFileText retrieves the object for file.FilePath. Results are cached.
func (l *S3GraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(file.FilePath),
		})
		if err != nil {
			return nil, err
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// Forget drops the cached content of file.
func (l *S3GraphFileLoader) Forget(file loader.GraphFile) {
	l.cache.Forget(loader.CacheKey(file))
}

// GetBase64 returns the object encoded as base64 with its mime type.
func (l *S3GraphFileLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	b, err := l.GetFileText(ctx, file)
	if err != nil {
		return loader.GraphBase64{}, err
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = loader.MimeFromPath(file.FilePath)
	}
	return loader.EncodeBase64(b, mimeType), nil
}
