package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinIO keeps media as objects in a single bucket; keys mirror the local
// layout so stored URLs do not depend on the driver.
type MinIO struct {
	client *minio.Client
	bucket string
}

func NewMinIO(client *minio.Client, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket}
}

func (m *MinIO) key(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", fmt.Errorf("empty object key %q", p)
	}
	return strings.TrimPrefix(clean, "/"), nil
}

func (m *MinIO) Exists(ctx context.Context, p string) (bool, error) {
	key, err := m.key(p)
	if err != nil {
		return false, err
	}
	_, err = m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinIO) Write(ctx context.Context, p string, r io.Reader, size int64, contentType string) (int64, error) {
	key, err := m.key(p)
	if err != nil {
		return 0, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return info.Size, nil
}

func (m *MinIO) Copy(ctx context.Context, src, dst string) error {
	srcKey, err := m.key(src)
	if err != nil {
		return err
	}
	dstKey, err := m.key(dst)
	if err != nil {
		return err
	}
	_, err = m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.bucket, Object: srcKey},
	)
	return err
}

func (m *MinIO) Move(ctx context.Context, src, dst string) error {
	if err := m.Copy(ctx, src, dst); err != nil {
		return err
	}
	return m.Delete(ctx, src)
}

func (m *MinIO) Delete(ctx context.Context, p string) error {
	key, err := m.key(p)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *MinIO) RemoveAll(ctx context.Context, dir string) error {
	prefix, err := m.key(dir)
	if err != nil {
		return err
	}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// MkdirAll is a no-op: object stores have no directories.
func (m *MinIO) MkdirAll(context.Context, string) error {
	return nil
}

func (m *MinIO) List(ctx context.Context, dir string) ([]string, error) {
	prefix, err := m.key(dir)
	if err != nil {
		return nil, err
	}
	prefix += "/"

	names := []string{}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/"))
	}
	return names, nil
}
