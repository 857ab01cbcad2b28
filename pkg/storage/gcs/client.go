// Package gcs stores product photos and brand assets in a public Cloud
// Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const (
	defaultPublicBase = "https://storage.googleapis.com"
	defaultMediaType  = "application/octet-stream"
	pingTimeout       = 5 * time.Second
)

var errNotInitialized = errors.New("gcs client not initialized")

// Client wraps the Cloud Storage JSON API for the media bucket.
type Client struct {
	objects    *storage.ObjectsService
	bucket     string
	publicBase string
}

// Uploader is the write surface consumed by the media service.
type Uploader interface {
	Upload(ctx context.Context, bucket, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, bucket, object string) error
	ObjectFromURL(raw string) (string, bool)
	DefaultBucket() string
}

// NewClient builds the storage client and checks the bucket is reachable.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	client, err := newClient(ctx, cfg, clientOptions(gcp)...)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", client.bucket), "gcs client initialized")
	}
	return client, nil
}

func newClient(ctx context.Context, cfg config.GCSConfig, opts ...option.ClientOption) (*Client, error) {
	bucket := strings.TrimSpace(cfg.BucketName)
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}
	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" {
		publicBase = defaultPublicBase
	}
	return &Client{
		objects:    storage.NewObjectsService(svc),
		bucket:     bucket,
		publicBase: publicBase,
	}, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(storage.DevstorageReadWriteScope)}
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Close is a no-op; the JSON API client holds no long-lived connections of
// its own.
func (c *Client) Close() error {
	return nil
}

// Ping lists at most one object, which needs storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.objects == nil {
		return errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.objects.List(c.bucket).MaxResults(1).Fields("items/name").Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs bucket check: %w", err)
	}
	return nil
}

// Upload stores body as bucket/object and returns its public URL.
func (c *Client) Upload(ctx context.Context, bucket, object, contentType string, body io.Reader) (string, error) {
	if c == nil || c.objects == nil {
		return "", errNotInitialized
	}
	if object == "" {
		return "", errors.New("object name is required")
	}
	if bucket == "" {
		bucket = c.bucket
	}
	if contentType == "" {
		contentType = defaultMediaType
	}

	meta := &storage.Object{Name: object, ContentType: contentType}
	if _, err := c.objects.Insert(bucket, meta).
		Media(body, googleapi.ContentType(contentType), googleapi.ChunkSize(0)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", object, err)
	}
	return c.PublicURL(bucket, object), nil
}

// Delete removes bucket/object. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, bucket, object string) error {
	if c == nil || c.objects == nil {
		return errNotInitialized
	}
	if bucket == "" {
		bucket = c.bucket
	}
	err := c.objects.Delete(bucket, object).Context(ctx).Do()
	if err == nil || isNotFound(err) {
		return nil
	}
	return fmt.Errorf("gcs delete %s: %w", object, err)
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// PublicURL renders the anonymous read URL for bucket/object.
func (c *Client) PublicURL(bucket, object string) string {
	base := defaultPublicBase
	if c != nil && c.publicBase != "" {
		base = c.publicBase
	}
	if bucket == "" && c != nil {
		bucket = c.bucket
	}
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return base + "/" + bucket + "/" + strings.Join(segments, "/")
}

// ObjectFromURL reverses PublicURL; ok is false for URLs outside the bucket.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	if c == nil {
		return "", false
	}
	prefix := c.publicBase + "/" + c.bucket + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	object, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || object == "" {
		return "", false
	}
	return object, true
}
