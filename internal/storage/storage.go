// Package storage contains the object stores uploaded files are kept in
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	a "sharefile/share-api/aws"

	"github.com/spf13/viper"
)

// S3 can delete at most 1000 objects in one batch request
const maxBatchDelete = 1000

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is everything the upload, download and cleanup paths need from
// an object store. Remove must treat missing keys as already deleted
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	PublicURL(key string) string
}

// New returns the object store selected by storage.type
func New(ctx context.Context) (ObjectStore, error) {
	switch t := viper.GetString("storage.type"); t {
	case "s3":
		c, err := a.NewS3(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return NewS3(c, viper.GetString("storage.public_url")), nil
	case "minio":
		return NewMinio(ctx)
	default:
		return nil, errors.New("invalid storage type " + t)
	}
}

// publicURL joins base and key escaping every path segment of the key
func publicURL(base, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}

	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

// chunk splits keys into slices of at most n elements
func chunk(keys []string, n int) [][]string {
	var out [][]string
	for start := 0; start < len(keys); start += n {
		end := min(start+n, len(keys))
		out = append(out, keys[start:end])
	}

	return out
}
