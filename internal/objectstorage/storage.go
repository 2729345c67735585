// Package objectstorage stores binary blobs under generated names and
// hands back public URLs.
package objectstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
)

// Storage saves a blob and returns the URL it will be served from.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// PublicURL returns the URL for an object name without storing
	// anything, used for the signup default image.
	PublicURL(name string) string
}

// GCS implements Storage on a Cloud Storage bucket using the Firebase
// media URL pattern.
type GCS struct {
	client *gcs.Client
	bucket string
}

func NewGCS(client *gcs.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (s *GCS) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return s.PublicURL(name), nil
}

func (s *GCS) PublicURL(name string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucket, url.PathEscape(name))
}
