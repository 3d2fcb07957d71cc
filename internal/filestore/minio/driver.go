// Package minio provides a MinIO (and S3-compatible) implementation of
// filestore.Store.
package minio

import (
	"context"
	"io"
	"sort"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/filestore"
)

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client        *miniogo.Client
	defaultBucket string
}

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client, defaultBucket: cfg.DefaultBucket}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// --- filestore.Store implementation ---

// Ping checks the default bucket exists, or lists buckets when none is set.
func (d *Driver) Ping(ctx context.Context) error {
	if d.defaultBucket == "" {
		if _, err := d.client.ListBuckets(ctx); err != nil {
			return mapError(err, "ping failed")
		}
		return nil
	}

	ok, err := d.client.BucketExists(ctx, d.defaultBucket)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.New(errs.ErrKindNotFound, "bucket "+d.defaultBucket+" does not exist")
	}
	return nil
}

// Close is a no-op; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// ListObjects lists every object under prefix, recursively.
func (d *Driver) ListObjects(ctx context.Context, bucket, prefix string) ([]filestore.ObjectInfo, error) {
	opts := miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var results []filestore.ObjectInfo
	for obj := range d.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list objects")
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		results = append(results, filestore.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results, nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST call Object.Close() after reading.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (filestore.Object, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	// GetObject is lazy; Stat surfaces missing keys and auth failures.
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(err, "failed to get object "+bucket+"/"+key)
	}

	return &object{
		ReadCloser: obj,
		info: &filestore.ObjectInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			LastModified: stat.LastModified,
		},
	}, nil
}

// object wraps a MinIO GetObject response and exposes filestore.Object.
type object struct {
	io.ReadCloser
	info *filestore.ObjectInfo
}

func (o *object) Info() *filestore.ObjectInfo {
	return o.info
}
