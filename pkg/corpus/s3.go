package corpus

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/axle/pkg/definition"
)

// S3Config carries the settings for an object-store corpus. Endpoint and
// path-style addressing exist for MinIO and other S3-compatible stores that
// teams run next to their build infrastructure.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3Source reads a corpus published under an S3 prefix. Keys are expected to
// follow the same namespace layout as directory corpora:
// {prefix}/someip/... and {prefix}/diag/....
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source builds the AWS client and verifies nothing: listing happens
// lazily so a daemon can start before its corpus bucket is reachable.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var awsConfig aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// Static credentials, for MinIO or AWS with explicit keys.
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		// Default credential chain: IAM roles, env vars, shared config.
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Source{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// Label implements Source.
func (s *S3Source) Label() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// List implements Source by paging through the prefix and keeping .json
// keys. Namespace comes from the first path element below the prefix.
func (s *S3Source) List(ctx context.Context) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "S3.ListCorpus",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.prefix", s.prefix),
		),
	)
	defer span.End()

	var entries []Entry
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to list corpus objects")
			return nil, fmt.Errorf("failed to list corpus objects: %w", err)
		}
		for _, object := range page.Contents {
			if object.Key == nil {
				continue
			}
			rel := strings.TrimPrefix(*object.Key, s.prefix)
			if !strings.HasSuffix(rel, ".json") {
				continue
			}
			ns, _ := definition.NamespaceForPath(rel)
			entries = append(entries, Entry{Path: rel, Namespace: ns})
		}
	}

	span.SetAttributes(attribute.Int("corpus.documents", len(entries)))
	sortEntries(entries)
	return entries, nil
}

// Read implements Source.
func (s *S3Source) Read(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "S3.GetDocument",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", s.prefix+path),
		),
	)
	defer span.End()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + path),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get document from s3")
		return nil, fmt.Errorf("failed to get document from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read document body")
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	span.SetAttributes(attribute.Int("content.size", len(data)))
	return data, nil
}
