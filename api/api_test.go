/*
api_test.go - Shared fixtures for HTTP handler tests

Every test gets its own in-memory store, a filesystem blob store under
t.TempDir() and a fixed clock, and drives the real router.
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/blob"
	"github.com/warp/business-admin/store/sqlite"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	t         *testing.T
	h         *Handler
	scheduler *ReviewScheduler
	router    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	store.SetClock(func() time.Time { return testNow })
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h, err := NewHandler(store, Options{
		Blobs:  blobs,
		Logger: logger,
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, err)

	scheduler := NewReviewScheduler(h)
	return &testEnv{
		t:         t,
		h:         h,
		scheduler: scheduler,
		router:    NewRouter(h, RouterOptions{Scheduler: scheduler}),
	}
}

// do sends body as JSON (nil sends no body).
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// upload posts one multipart "file" field.
func (e *testEnv) upload(path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(e.t, err)
	_, err = part.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status code and decodes the body into v when set.
func (e *testEnv) expect(rec *httptest.ResponseRecorder, status int, v any) {
	e.t.Helper()
	require.Equal(e.t, status, rec.Code, "body: %s", rec.Body.String())
	if v != nil {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), v))
	}
}

// create POSTs body and returns the new record's id.
func (e *testEnv) create(path string, body any) string {
	e.t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	e.expect(e.do(http.MethodPost, path, body), http.StatusCreated, &out)
	require.NotEmpty(e.t, out.ID)
	return out.ID
}

func (e *testEnv) errorBody(rec *httptest.ResponseRecorder, status int) ErrorResponse {
	e.t.Helper()
	var out ErrorResponse
	e.expect(rec, status, &out)
	return out
}

// seedEmployee creates a department and an employee in it.
func (e *testEnv) seedEmployee(name, email string) (deptID, empID string) {
	e.t.Helper()
	deptID = e.create("/api/departments", map[string]any{"name": "Dept " + name})
	empID = e.create("/api/employees", map[string]any{
		"name":          name,
		"email":         email,
		"department_id": deptID,
		"hire_date":     "2024-01-15",
		"salary":        "5000",
	})
	return deptID, empID
}
