// Package storage stores uploaded files and hands back public URLs for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// BucketDocuments holds every user upload: resource files under
// {profileID}/{millis}.{ext} and charters under charters/{millis}_{name}.
const BucketDocuments = "documents"

var (
	ErrEmptyFile   = errors.New("storage: empty file")
	ErrFileTooBig  = errors.New("storage: file exceeds size limit")
	ErrBadFilename = errors.New("storage: filename has no usable extension")
)

// MaxUploadBytes bounds a single upload. Matches the request body cap on
// the API side.
const MaxUploadBytes = 20 << 20

// Store writes uploaded blobs and resolves their public URLs.
type Store interface {
	// Upload writes data under bucket/path and returns the public URL.
	Upload(ctx context.Context, bucket, path string, data []byte) (string, error)
	// PublicURL returns the URL a stored object is served at.
	PublicURL(bucket, path string) string
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// SanitizeFilename keeps letters, digits and dots; everything else
// becomes an underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ResourcePath builds the object path for a resource upload:
// the uploader's profile id, a millisecond timestamp, the original
// file's extension.
func ResourcePath(profileID, filename string, now time.Time) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", ErrBadFilename
	}
	return fmt.Sprintf("%s/%d.%s", profileID, now.UnixMilli(), ext), nil
}

// CharterPath builds the object path for a structure charter upload.
func CharterPath(filename string, now time.Time) string {
	return fmt.Sprintf("charters/%d_%s", now.UnixMilli(), SanitizeFilename(filename))
}

// Local serves uploads from a directory on disk. Objects land under
// baseDir/bucket/path and are exposed at baseURL/bucket/path.
type Local struct {
	baseDir string
	baseURL string
}

// NewLocal returns a disk-backed store. baseURL is the public prefix the
// file handler serves from, e.g. "/files".
func NewLocal(baseDir, baseURL string) *Local {
	return &Local{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (l *Local) Upload(ctx context.Context, bucket, path string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if len(data) > MaxUploadBytes {
		return "", ErrFileTooBig
	}
	rel, err := cleanObjectPath(path)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.baseDir, bucket, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write: %w", err)
	}
	return l.PublicURL(bucket, rel), nil
}

func (l *Local) PublicURL(bucket, path string) string {
	return l.baseURL + "/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

// Dir returns the directory objects are written under, for the file
// serving handler.
func (l *Local) Dir() string { return l.baseDir }

// cleanObjectPath rejects traversal outside the bucket.
func cleanObjectPath(path string) (string, error) {
	cleaned := filepath.ToSlash(filepath.Clean("/" + path))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrBadFilename
	}
	return cleaned, nil
}
