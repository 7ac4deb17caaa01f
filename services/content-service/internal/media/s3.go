package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrStorageDisabled     = errors.New("media storage is not configured")
	ErrUnsupportedMedia    = errors.New("unsupported content type")
	ErrInvalidObjectFolder = errors.New("invalid object folder")
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(
		pc *s3.PresignClient,
		ctx context.Context,
		in *s3.PutObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	presignGetObject = func(
		pc *s3.PresignClient,
		ctx context.Context,
		in *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var objectFolders = map[string]bool{
	"formations": true,
	"templates":  true,
	"prompts":    true,
}

// Config is the S3 (or S3 compatible) bucket cover images are stored in.
type Config struct {
	Endpoint   string        `env:"S3_ENDPOINT"`
	Region     string        `env:"S3_REGION"     envDefault:"us-east-1"`
	AccessKey  string        `env:"S3_ACCESS_KEY"`
	SecretKey  string        `env:"S3_SECRET_KEY"`
	Bucket     string        `env:"S3_BUCKET"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
	PathStyle  bool          `env:"S3_PATH_STYLE"  envDefault:"true"`
}

func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// PresignedURL is a time limited URL for one object.
type PresignedURL struct {
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Storage hands out presigned URLs so that clients talk to the bucket directly.
type Storage interface {
	PresignUpload(ctx context.Context, folder, contentType string) (*PresignedURL, error)
	PresignDownload(ctx context.Context, key string) (*PresignedURL, error)
}

type s3Storage struct {
	cfg     Config
	presign *s3.PresignClient
	now     func() time.Time
}

// NewS3Storage returns a Storage backed by cfg. A disabled config yields a
// Storage whose methods fail with ErrStorageDisabled.
func NewS3Storage(ctx context.Context, cfg Config) (Storage, error) {
	if !cfg.Enabled() {
		return disabledStorage{}, nil
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &s3Storage{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
		now:     time.Now,
	}, nil
}

func (s *s3Storage) PresignUpload(ctx context.Context, folder, contentType string) (*PresignedURL, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrUnsupportedMedia
	}
	if !objectFolders[folder] {
		return nil, ErrInvalidObjectFolder
	}

	key := ObjectKey(folder, ext)
	expiresAt := s.now().Add(s.cfg.PresignTTL)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &PresignedURL{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *s3Storage) PresignDownload(ctx context.Context, key string) (*PresignedURL, error) {
	expiresAt := s.now().Add(s.cfg.PresignTTL)

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign get object: %w", err)
	}

	return &PresignedURL{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: expiresAt,
	}, nil
}

// ObjectKey returns a fresh random key under folder, e.g. formations/2f1c...e9.png.
func ObjectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

type disabledStorage struct{}

func (disabledStorage) PresignUpload(context.Context, string, string) (*PresignedURL, error) {
	return nil, ErrStorageDisabled
}

func (disabledStorage) PresignDownload(context.Context, string) (*PresignedURL, error) {
	return nil, ErrStorageDisabled
}
