/*
Package blob stores document attachments.

DRIVERS:
  - fs: files under a root directory, content type kept in a ".meta" sidecar
  - s3: a single S3 (or MinIO) bucket via aws-sdk-go-v2

Keys are slash separated relative paths ("documents/<id>/<file>"). Keys
that are absolute or contain ".." are rejected. Put replaces an existing
object under the same key.
*/
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/business-admin/generic"
)

type Driver string

const (
	DriverFS Driver = "fs"
	DriverS3 Driver = "s3"
)

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is implemented by every driver.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	// Get returns generic.ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a driver.
type Options struct {
	Driver Driver
	Dir    string
	S3     S3Config
}

// Open builds the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFS, "":
		return NewFS(opts.Dir)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}

// DocumentKey is the key of a document attachment.
func DocumentKey(documentID, filename string) string {
	name := path.Base(filepath.ToSlash(strings.TrimSpace(filename)))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return path.Join("documents", documentID, name)
}

func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty blob key", generic.ErrValidation)
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: invalid blob key %q", generic.ErrValidation, key)
	}
	return path.Clean(filepath.ToSlash(key)), nil
}

func notFound(key string) error {
	return &generic.NotFoundError{Table: "blob", ID: key}
}
