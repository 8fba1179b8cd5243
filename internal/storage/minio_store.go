package storage

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// MinioStore is a ContentStore on a versioned MinIO bucket. The content hash
// is the object ETag and revisions are object version ids.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func (s *MinioStore) Get(ctx context.Context, p, revision string) (Content, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, p, minio.GetObjectOptions{VersionID: revision})
	if err != nil {
		return Content{}, s.translate(err, p)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return Content{}, s.translate(err, p)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return Content{}, &StoreError{Op: "read", Path: p, Err: err}
	}
	return Content{Path: p, Data: data, Hash: info.ETag, Revision: info.VersionID}, nil
}

func (s *MinioStore) Put(ctx context.Context, p string, data []byte, expectedHash string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType(p)}
	if expectedHash == "" {
		opts.SetMatchETagExcept("*")
	} else {
		opts.SetMatchETag(expectedHash)
	}

	info, err := s.client.PutObject(ctx, s.bucket, p, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusPreconditionFailed || resp.Code == "PreconditionFailed" {
			actual := ""
			if stat, statErr := s.client.StatObject(ctx, s.bucket, p, minio.StatObjectOptions{}); statErr == nil {
				actual = stat.ETag
			}
			return "", &ConflictError{Path: p, Expected: expectedHash, Actual: actual}
		}
		return "", &StoreError{Op: "put", Path: p, Err: err}
	}
	return info.ETag, nil
}

func (s *MinioStore) Revisions(ctx context.Context, p string) ([]Revision, error) {
	var out []Revision
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:       p,
		WithVersions: true,
	}) {
		if obj.Err != nil {
			return nil, &StoreError{Op: "list versions", Path: p, Err: obj.Err}
		}
		if obj.Key != p || obj.IsDeleteMarker {
			continue
		}
		out = append(out, Revision{
			ID:           obj.VersionID,
			Hash:         obj.ETag,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			IsLatest:     obj.IsLatest,
		})
	}
	if len(out) == 0 {
		return nil, errors.Wrap(ErrNotFound, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastModified.After(out[j].LastModified) })
	return out, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	prefix = normalizePrefix(prefix)
	var out []Entry
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, &StoreError{Op: "list", Path: prefix, Err: obj.Err}
		}
		if strings.HasSuffix(obj.Key, "/") {
			out = append(out, Entry{Path: obj.Key, Name: path.Base(obj.Key), IsDir: true})
			continue
		}
		out = append(out, Entry{
			Path:         obj.Key,
			Name:         path.Base(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (s *MinioStore) translate(err error, p string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchVersion", "NoSuchBucket":
		return errors.Wrap(ErrNotFound, p)
	}
	return &StoreError{Op: "get", Path: p, Err: err}
}

func contentType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
