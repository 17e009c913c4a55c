package assets

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignValidity is the lifetime of download URLs handed out for S3 assets.
const PresignValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config carries the connection settings of an S3-compatible backend.
type S3Config struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
}

// S3Store keeps assets as objects in one bucket.
type S3Store struct {
	objects objectAPI
	presign presignAPI
	bucket  string
	now     func() time.Time
}

// NewS3Store builds an S3Store using static credentials and a custom
// endpoint (MinIO and friends), with path-style addressing.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		objects: client,
		presign: newS3PresignClient(client),
		bucket:  c.Bucket,
		now:     time.Now,
	}, nil
}

// objectKey prefixes key with the upload date.
func (s *S3Store) objectKey(key string) string {
	d := s.now().UTC()
	return fmt.Sprintf("posts/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), key)
}

// Put uploads srcPath and returns the object key as the reference. The write
// is conditional (If-None-Match: *), so an existing object is never replaced.
func (s *S3Store) Put(ctx context.Context, key, srcPath string) (string, error) {
	if err := checkRef(key); err != nil {
		return "", err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	objectKey := s.objectKey(key)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		IfNoneMatch:   aws.String("*"),
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := s.objects.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}

	return objectKey, nil
}

// Delete removes the object ref. S3 treats missing keys as success.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", ref, err)
	}
	return nil
}

// PresignGet returns a temporary download URL for ref.
func (s *S3Store) PresignGet(ctx context.Context, ref string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(PresignValidity))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return req.URL, nil
}
