// Package storage reads attachment content from S3-compatible object storage,
// so documents can be attached straight from a bucket without a local copy.
package storage

import (
	"context"
	"io"
	"path"
	"time"

	"trackflow/internal/documents"
)

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectReader streams objects by key.
type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

// ObjectSource is a documents.FileSource over an ObjectReader. References are object keys.
type ObjectSource struct {
	r ObjectReader
}

var _ documents.FileSource = (*ObjectSource)(nil)

func NewObjectSource(r ObjectReader) *ObjectSource {
	return &ObjectSource{r: r}
}

// Open streams the object at key. The upload file name is the key's last segment.
func (s *ObjectSource) Open(ctx context.Context, key string) (documents.File, error) {
	body, info, err := s.r.Get(ctx, key)
	if err != nil {
		return documents.File{}, err
	}
	ct := info.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return documents.File{Name: path.Base(key), ContentType: ct, Body: body}, nil
}
