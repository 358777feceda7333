package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Minio struct {
	c      *minio.Client
	bucket string
	base   string
}

// NewMinio connects to storage.endpoint and creates the bucket if it doesn't exist yet
func NewMinio(ctx context.Context) (*Minio, error) {
	endpoint := viper.GetString("storage.endpoint")
	secure := viper.GetBool("storage.use_ssl")

	// Allow a full URL as the endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			secure = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("storage.access_key_id"), viper.GetString("storage.secret_access_key"), ""),
		Secure: secure,
		Region: viper.GetString("storage.region"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client, %w", err)
	}

	bucket := viper.GetString("storage.bucket")

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: viper.GetString("storage.region")}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s, %w", bucket, err)
		}

		zap.L().Info("Bucket created", zap.String("bucket", bucket))
	}

	base := viper.GetString("storage.public_url")
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}

		base = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	return &Minio{c: cli, bucket: bucket, base: base}, nil
}

func (m *Minio) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.c.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=3600",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to minio, %w", err)
	}

	return nil
}

func (m *Minio) Remove(ctx context.Context, keys []string) error {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var failed int
	var first error

	for e := range m.c.RemoveObjects(ctx, m.bucket, objects, minio.RemoveObjectsOptions{}) {
		if minio.ToErrorResponse(e.Err).Code == "NoSuchKey" {
			continue
		}

		failed++
		if first == nil {
			first = fmt.Errorf("%s: %w", e.ObjectName, e.Err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to delete %d object(s) from minio, %w", failed, first)
	}

	return nil
}

func (m *Minio) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.c.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat object, %w", err)
	}

	return true, nil
}

func (m *Minio) List(ctx context.Context) ([]ObjectInfo, error) {
	var out []ObjectInfo

	for o := range m.c.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if o.Err != nil {
			return nil, fmt.Errorf("failed to list objects, %w", o.Err)
		}

		out = append(out, ObjectInfo{
			Key:          o.Key,
			Size:         o.Size,
			LastModified: o.LastModified,
		})
	}

	return out, nil
}

func (m *Minio) PublicURL(key string) string {
	return publicURL(m.base, key)
}
