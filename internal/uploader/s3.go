package uploader

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	apperrors "github.com/stagecraft/draftpipe/internal/errors"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

// S3Client implements Client against any S3-compatible object store.
type S3Client struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	ids           uuid.Generator
	log           zerolog.Logger
}

// S3Config holds configuration for the S3 uploader
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional, for S3-compatible stores
	Bucket          string // Required
	PublicBaseURL   string // Required, prefix under which objects are served

	IDGenerator uuid.Generator  // Optional
	Logger      *zerolog.Logger // Optional
}

// NewS3Client creates an uploader backed by an S3-compatible store
func NewS3Client(cfg *S3Config) (*S3Client, error) {
	if cfg == nil {
		return nil, apperrors.InvalidArgument("config is required")
	}
	if cfg.Bucket == "" {
		return nil, apperrors.InvalidArgument("bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, apperrors.InvalidArgument("public base URL is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to initialize S3 client")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &S3Client{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		ids:           ids,
		log:           log,
	}, nil
}

// Upload puts the file into the bucket under a fresh key and returns its
// public URL. No thumbnail derivation happens here.
func (c *S3Client) Upload(ctx context.Context, file *catalog.StagedFile) (*Result, error) {
	if file == nil {
		return nil, apperrors.InvalidArgument("file cannot be nil")
	}

	key := objectKey(c.ids.New(), file.Name)

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUploadFailed, "failed to upload file").
			WithMeta("file", file.Name)
	}

	url := c.publicBaseURL + "/" + key
	c.log.Debug().Str("key", key).Str("url", url).Msg("uploaded staged file")

	return &Result{URL: url}, nil
}

// objectKey builds a collision-free object name, keeping the original
// extension so content type sniffing downstream still works.
func objectKey(id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "media/" + id + ext
}
