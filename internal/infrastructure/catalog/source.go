package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/nutridash/dashboard/internal/ports/outbound"
)

// AWSOptions configure the S3 source
type AWSOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string
}

// NewSource picks a source from the location scheme: http(s):// URLs are
// fetched, s3://bucket/key objects are read through the AWS SDK and anything
// else is treated as a local path.
func NewSource(location string, timeout time.Duration, awsOpts AWSOptions) (outbound.CatalogSource, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, timeout), nil
	case strings.HasPrefix(location, "s3://"):
		return NewS3Source(location, awsOpts)
	case location == "":
		return nil, fmt.Errorf("catalog source is empty")
	default:
		return NewFileSource(strings.TrimPrefix(location, "file://")), nil
	}
}

// FileSource reads a local CSV
type FileSource struct {
	path string
}

// NewFileSource creates a local file source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	return f, nil
}

func (s *FileSource) Location() string { return "file://" + s.path }

// HTTPSource downloads the CSV
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates an HTTP source
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *HTTPSource) Location() string { return s.url }

// S3Source reads the CSV from an S3 object
type S3Source struct {
	bucket string
	key    string
	client *s3.S3
}

// NewS3Source parses an s3://bucket/key URI and creates the client
func NewS3Source(location string, opts AWSOptions) (*S3Source, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse s3 location: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("s3 location must be s3://bucket/key, got %q", location)
	}

	cfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &S3Source{bucket: u.Host, key: key, client: s3.New(sess)}, nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get catalog object: %w", err)
	}
	return out.Body, nil
}

func (s *S3Source) Location() string { return "s3://" + s.bucket + "/" + s.key }
