package blob_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/blob"
	"github.com/warp/business-admin/generic"
)

func TestFS_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	key := blob.DocumentKey("doc-1", "manual.pdf")
	assert.Equal(t, "documents/doc-1/manual.pdf", key)

	info, err := store.Put(ctx, key, strings.NewReader("v1"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	// Put replaces.
	_, err = store.Put(ctx, key, strings.NewReader("version 2"), "application/pdf")
	require.NoError(t, err)

	got, rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	assert.Equal(t, "version 2", string(data))
	assert.Equal(t, int64(9), got.Size)
	assert.Equal(t, "application/pdf", got.ContentType)

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key), "deleting a missing key is fine")

	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestFS_RejectsTraversal(t *testing.T) {
	store, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "/abs", "a/../../b"} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, generic.ErrValidation, "key %q", key)
	}
}

func TestDocumentKey_StripsDirectories(t *testing.T) {
	assert.Equal(t, "documents/d/passwd", blob.DocumentKey("d", "../../etc/passwd"))
	assert.Equal(t, "documents/d/attachment", blob.DocumentKey("d", ""))
	assert.Equal(t, "documents/d/report.xlsx", blob.DocumentKey("d", "reports/report.xlsx"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := blob.Open(context.Background(), blob.Options{Driver: "ftp"})
	assert.Error(t, err)

	s, err := blob.Open(context.Background(), blob.Options{Driver: blob.DriverFS, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &blob.FS{}, s)
}

// fakeS3 answers path-style object requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	deletes int
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(req.URL.Path, "/bucket/")
	respond := func(status int, body string, h http.Header) (*http.Response, error) {
		if h == nil {
			h = http.Header{}
		}
		return &http.Response{
			StatusCode: status,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}

	switch req.Method {
	case http.MethodPut:
		if req.Body != nil {
			_, _ = io.Copy(io.Discard, req.Body)
		}
		f.objects[key] = "stored"
		f.types[key] = req.Header.Get("Content-Type")
		return respond(http.StatusOK, "", nil)
	case http.MethodHead, http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound,
				`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`,
				http.Header{"Content-Type": {"application/xml"}})
		}
		h := http.Header{
			"Content-Type":   {f.types[key]},
			"Content-Length": {"6"},
		}
		if req.Method == http.MethodHead {
			body = ""
		}
		return respond(http.StatusOK, body, h)
	case http.MethodDelete:
		f.deletes++
		delete(f.objects, key)
		return respond(http.StatusNoContent, "", nil)
	}
	return respond(http.StatusNotImplemented, "", nil)
}

func newFakeS3Store(t *testing.T) (*blob.S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store, err := blob.NewS3(context.Background(), blob.S3Config{
		Bucket:          "bucket",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3_Flow(t *testing.T) {
	ctx := context.Background()
	store, fake := newFakeS3Store(t)

	info, err := store.Put(ctx, "documents/d1/a.txt", bytes.NewReader([]byte("stored")), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "documents/d1/a.txt", info.Key)
	assert.Equal(t, int64(6), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	_, rc, err := store.Get(ctx, "documents/d1/a.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "stored", string(data))

	require.NoError(t, store.Delete(ctx, "documents/d1/a.txt"))
	assert.Equal(t, 1, fake.deletes)

	_, _, err = store.Get(ctx, "documents/d1/a.txt")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestS3_RequiresBucket(t *testing.T) {
	_, err := blob.NewS3(context.Background(), blob.S3Config{})
	assert.Error(t, err)
}
