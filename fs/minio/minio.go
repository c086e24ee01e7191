package minio

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/TFMV/icetour/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Constants for configuration and limits
const (
	DefaultRegion         = "us-east-1"
	DefaultConnectTimeout = 10 * time.Second
	DefaultKeepAlive      = 30 * time.Second
	DefaultIdleTimeout    = 90 * time.Second
	DefaultRetryAttempts  = 3
	DefaultRetryDelay     = 100 * time.Millisecond
	MaxBucketNameLength   = 63
)

// MinIOError records which storage operation failed
type MinIOError struct {
	Op      string
	Err     error
	Context map[string]interface{}
}

func (e *MinIOError) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("minio %s failed: %v (context: %v)", e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("minio %s failed: %v", e.Op, e.Err)
}

func (e *MinIOError) Unwrap() error {
	return e.Err
}

// ObjectInfo describes one object below a table location
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client talks to the S3-compatible store holding the warehouse
type Client struct {
	client        *minio.Client
	region        string
	logger        *zap.Logger
	retryAttempts int
	retryDelay    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for storage operations
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetry sets how often bucket operations are attempted and the base delay between
// attempts
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		c.retryDelay = delay
	}
}

// NewClient creates a client for the configured endpoint. Path-style access maps to
// minio's path bucket lookup.
func NewClient(cfg *config.S3Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 storage configuration is required")
	}

	host, secure, err := ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	lookup := minio.BucketLookupDNS
	if cfg.PathStyleAccess {
		lookup = minio.BucketLookupPath
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		IdleConnTimeout: DefaultIdleTimeout,
		DialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
	}

	mc, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: lookup,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	c := &Client{
		client:        mc,
		region:        region,
		logger:        zap.NewNop(),
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseEndpoint splits an endpoint URL into the host S3 clients expect and whether
// TLS is used. A bare host:port is treated as plain HTTP.
func ParseEndpoint(endpoint string) (host string, secure bool, err error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("S3 endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid S3 endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http":
	case "https":
		secure = true
	default:
		return "", false, fmt.Errorf("invalid S3 endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid S3 endpoint %q: missing host", endpoint)
	}
	return u.Host, secure, nil
}

// WarehouseBucket splits an s3://bucket/prefix location into bucket and key prefix
func WarehouseBucket(location string) (bucket, prefix string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	switch u.Scheme {
	case "s3", "s3a", "s3n":
	default:
		return "", "", fmt.Errorf("location %q is not an s3:// URI", location)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("location %q has no bucket", location)
	}
	if err := validateBucketName(u.Host); err != nil {
		return "", "", err
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (c *Client) EnsureBucket(ctx context.Context, bucket string) (created bool, err error) {
	if err := validateBucketName(bucket); err != nil {
		return false, err
	}

	var exists bool
	err = c.retry(ctx, func(ctx context.Context) error {
		var err error
		exists, err = c.client.BucketExists(ctx, bucket)
		return err
	})
	if err != nil {
		return false, &MinIOError{
			Op:      "check_bucket_exists",
			Err:     err,
			Context: map[string]interface{}{"bucket": bucket, "attempts": c.retryAttempts},
		}
	}
	if exists {
		c.logger.Debug("bucket exists", zap.String("bucket", bucket))
		return false, nil
	}

	err = c.retry(ctx, func(ctx context.Context) error {
		return c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region})
	})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" {
			return false, nil
		}
		return false, &MinIOError{
			Op:      "create_bucket",
			Err:     err,
			Context: map[string]interface{}{"bucket": bucket, "region": c.region},
		}
	}

	c.logger.Info("created bucket", zap.String("bucket", bucket), zap.String("region", c.region))
	return true, nil
}

// ListFiles lists every object below an s3:// location, sorted by key
func (c *Client) ListFiles(ctx context.Context, location string) ([]ObjectInfo, error) {
	bucket, prefix, err := WarehouseBucket(location)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var objects []ObjectInfo
	for obj := range c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, &MinIOError{
				Op:      "list_objects",
				Err:     obj.Err,
				Context: map[string]interface{}{"bucket": bucket, "prefix": prefix},
			}
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (c *Client) retry(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
		lastErr = op(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < c.retryAttempts-1 {
			c.logger.Debug("retrying storage operation", zap.Int("attempt", attempt+1), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt+1)):
			}
		}
	}
	return lastErr
}

// validateBucketName validates S3 bucket names
func validateBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > MaxBucketNameLength {
		return fmt.Errorf("bucket name must be between 3 and %d characters", MaxBucketNameLength)
	}

	for i, char := range bucket {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '-' || char == '.') {
			return fmt.Errorf("bucket name contains invalid character: %c", char)
		}

		// Cannot start or end with hyphen or period
		if (i == 0 || i == len(bucket)-1) && (char == '-' || char == '.') {
			return fmt.Errorf("bucket name cannot start or end with hyphen or period")
		}
	}

	if strings.Contains(bucket, "..") {
		return fmt.Errorf("bucket name cannot contain consecutive periods")
	}

	if net.ParseIP(bucket) != nil {
		return fmt.Errorf("bucket name cannot be formatted as IP address")
	}

	return nil
}
