package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alekLukanen/HealthcareMLOps/config"
)

type IObjectStorage interface {
	UploadFile(ctx context.Context, bucket, key, filePath string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

type ObjectStorageOptions struct {
	Endpoint     string
	Region       string
	AuthKey      string
	AuthSecret   string
	UsePathStyle bool
}

func NewObjectStorageOptionsFromConfig(cfg config.ObjectStorageConfig) ObjectStorageOptions {
	return ObjectStorageOptions{
		Endpoint:     cfg.Endpoint,
		Region:       cfg.Region,
		AuthKey:      cfg.AuthKey,
		AuthSecret:   cfg.AuthSecret,
		UsePathStyle: cfg.UsePathStyle,
	}
}

// ObjectStorage talks to any S3 compatible service. Static credentials are
// used when a key is given, otherwise the default AWS credential chain.
type ObjectStorage struct {
	logger *slog.Logger

	client *s3.Client
}

func NewObjectStorage(
	ctx context.Context,
	logger *slog.Logger,
	options ObjectStorageOptions,
) (*ObjectStorage, error) {

	configFuncs := make([]func(*awsconfig.LoadOptions) error, 0)
	configFuncs = append(configFuncs, awsconfig.WithRegion(options.Region))

	if options.AuthKey != "" {
		creds := credentials.NewStaticCredentialsProvider(options.AuthKey, options.AuthSecret, "")
		configFuncs = append(configFuncs, awsconfig.WithCredentialsProvider(creds))
	}

	s3Config, err := awsconfig.LoadDefaultConfig(ctx, configFuncs...)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("failed loading object storage config for region %s", options.Region))
	}

	client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = options.UsePathStyle
	})

	return &ObjectStorage{
		logger: logger,
		client: client,
	}, nil
}

func (obj *ObjectStorage) UploadFile(ctx context.Context, bucket, key, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("failed opening %s for upload", filePath))
	}
	defer file.Close()

	obj.logger.Info(
		"uploading file", slog.String("bucket", bucket), slog.String("key", key), slog.String("path", filePath),
	)

	uploader := manager.NewUploader(obj.client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("failed uploading %s to s3://%s/%s", filePath, bucket, key))
	}
	return nil
}

func (obj *ObjectStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	obj.logger.Info("listing objects", slog.String("bucket", bucket), slog.String("prefix", prefix))

	keys := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(obj.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("failed listing s3://%s/%s", bucket, prefix))
		}
		for _, item := range page.Contents {
			keys = append(keys, aws.ToString(item.Key))
		}
	}
	return keys, nil
}
