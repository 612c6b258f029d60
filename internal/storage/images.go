package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

const PublicPrefix = "/uploads"

// OpenDir opens a bucket backed by a local directory, creating it if needed.
func OpenDir(dir string) (*blob.Bucket, error) {
	b, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, fmt.Errorf("open upload dir %q: %w", dir, err)
	}
	return b, nil
}

// ImageStore keeps uploaded product images and hands out the public path
// under which they are served.
type ImageStore struct {
	Bucket *blob.Bucket
	Now    func() time.Time
}

func NewImageStore(b *blob.Bucket) *ImageStore {
	return &ImageStore{Bucket: b, Now: time.Now}
}

// SanitizeName turns an uploaded filename into a safe object key suffix.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "image"
	}
	return out
}

func (s *ImageStore) key(originalName string) string {
	return fmt.Sprintf("%d-%s", s.Now().UnixMilli(), SanitizeName(originalName))
}

// Save writes the image and returns its public path, e.g. /uploads/1700000000000-shirt.png.
func (s *ImageStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	key := s.key(originalName)

	w, err := s.Bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("open image writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close image writer: %w", err)
	}

	return PublicPrefix + "/" + key, nil
}

// Delete removes the image behind a public path. Missing images are not an error.
func (s *ImageStore) Delete(ctx context.Context, publicPath string) error {
	key, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || key == "" {
		return nil
	}
	if err := s.Bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("delete image %q: %w", key, err)
	}
	return nil
}

func (s *ImageStore) Exists(ctx context.Context, publicPath string) (bool, error) {
	key, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || key == "" {
		return false, nil
	}
	return s.Bucket.Exists(ctx, key)
}
