package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	a "sharefile/share-api/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const minMultipartSize = 12 << 20

type S3 struct {
	c    *a.S3Client
	base string
}

func NewS3(c *a.S3Client, publicBase string) *S3 {
	return &S3{c: c, base: publicBase}
}

func (s *S3) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        s.c.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=3600"),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(s.c.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = uploader.Upload(ctx, input)
	} else {
		_, err = s.c.C.PutObject(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("failed to upload object to S3, %w", err)
	}

	return nil
}

func (s *S3) Remove(ctx context.Context, keys []string) error {
	for _, part := range chunk(keys, maxBatchDelete) {
		objects := make([]types.ObjectIdentifier, len(part))
		for i, key := range part {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		resp, err := s.c.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: s.c.Bucket,
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects from S3, %w", err)
		}

		// S3 reports deleting a missing key as a success, anything listed
		// here is a real failure
		if len(resp.Errors) > 0 {
			first := resp.Errors[0]
			return fmt.Errorf("failed to delete %d object(s) from S3, first: %s %s",
				len(resp.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}

		zap.L().Debug("Deleted objects", zap.Int("count", len(part)))
	}

	return nil
}

func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.c.C.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: s.c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat object, %w", err)
	}

	return true, nil
}

func (s *S3) List(ctx context.Context) ([]ObjectInfo, error) {
	var out []ObjectInfo

	p := s3.NewListObjectsV2Paginator(s.c.C, &s3.ListObjectsV2Input{
		Bucket: s.c.Bucket,
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects, %w", err)
		}

		for _, o := range page.Contents {
			info := ObjectInfo{
				Key:  aws.ToString(o.Key),
				Size: aws.ToInt64(o.Size),
			}
			if o.LastModified != nil {
				info.LastModified = *o.LastModified
			}

			out = append(out, info)
		}
	}

	return out, nil
}

func (s *S3) PublicURL(key string) string {
	if s.base == "" {
		return strings.TrimPrefix(key, "/")
	}

	return publicURL(s.base, key)
}
