package documents

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// File is an opened file ready to be uploaded. Service.Upload and
// Attachments.Upload take ownership of Body and close it, on failure too.
type File struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

// FileSource resolves a user-chosen reference (a path, an object key) to file content.
type FileSource interface {
	Open(ctx context.Context, ref string) (File, error)
}

// LocalFiles reads files from the local filesystem.
type LocalFiles struct{}

func (LocalFiles) Open(_ context.Context, path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return File{Name: filepath.Base(path), ContentType: ct, Body: f}, nil
}

// RoutedSource picks a FileSource by the scheme of the reference ("minio://contracts/a.pdf").
// References without a registered scheme go to Default.
type RoutedSource struct {
	Default FileSource
	Schemes map[string]FileSource
}

func (r RoutedSource) Open(ctx context.Context, ref string) (File, error) {
	if scheme, rest, ok := strings.Cut(ref, "://"); ok {
		if src, found := r.Schemes[scheme]; found {
			return src.Open(ctx, rest)
		}
	}
	if r.Default == nil {
		return File{}, fmt.Errorf("no file source for %q", ref)
	}
	return r.Default.Open(ctx, ref)
}
