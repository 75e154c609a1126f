/*
handlers.go - HTTP API handler context and shared helpers

PURPOSE:
  Exposes the business administration modules via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain packages
  and the SQLite store. Feature handlers live in one file per module.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (every table plus the activity log)
  - Blobs: Attachment storage for ISO documents
  - Generator: Strategic identity / indicator generation
  - Menu: Static navigation configuration
  - Metrics: Prometheus collectors

REQUEST FLOW:
  1. Parse HTTP request (decode runs struct-tag validation)
  2. Map the request onto the domain record (DTO apply)
  3. Domain Validate() and domain logic
  4. Persist, append an activity entry
  5. Serialize response, or log and map the error

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (fields map per bad field)
  - 404: Record not found
  - 409: Conflict (duplicate key, illegal status transition)
  - 502: Generator unavailable
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - resource.go: Generic CRUD handlers
  - datasets.go: Demo dataset loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/warp/business-admin/blob"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/navigation"
	"github.com/warp/business-admin/store/sqlite"
	"github.com/warp/business-admin/strategy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Blobs     blob.Store
	Generator strategy.Generator
	Menu      navigation.Menu
	Metrics   *Metrics
	Logger    logrus.FieldLogger

	// MaxUploadSize bounds multipart bodies (imports, attachments).
	MaxUploadSize int64

	now func() time.Time

	// Track currently loaded demo dataset
	mu             sync.Mutex
	currentDataset string
}

// Options configures NewHandler. Zero values get working defaults.
type Options struct {
	Blobs         blob.Store
	Generator     strategy.Generator
	Menu          *navigation.Menu
	Metrics       *Metrics
	Logger        logrus.FieldLogger
	MaxUploadSize int64
	Now           func() time.Time
}

const defaultMaxUploadSize = 10 << 20

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, opts Options) (*Handler, error) {
	h := &Handler{
		Store:         store,
		Blobs:         opts.Blobs,
		Generator:     opts.Generator,
		Metrics:       opts.Metrics,
		Logger:        opts.Logger,
		MaxUploadSize: opts.MaxUploadSize,
		now:           opts.Now,
	}
	if h.Generator == nil {
		h.Generator = strategy.TemplateGenerator{}
	}
	if h.Metrics == nil {
		h.Metrics = NewMetrics()
	}
	if h.Logger == nil {
		h.Logger = logrus.StandardLogger()
	}
	if h.MaxUploadSize <= 0 {
		h.MaxUploadSize = defaultMaxUploadSize
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Menu != nil {
		h.Menu = *opts.Menu
	} else {
		menu, err := navigation.Default()
		if err != nil {
			return nil, fmt.Errorf("load navigation: %w", err)
		}
		h.Menu = menu
	}
	return h, nil
}

// today is the current calendar day in UTC.
func (h *Handler) today() time.Time {
	return generic.TruncateDay(h.now())
}

// =============================================================================
// SYSTEM HANDLERS
// =============================================================================

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	version, err := h.Store.SchemaVersion(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Schema version unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

// GetNavigation returns the menu, or one module's section with ?module=.
func (h *Handler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	module := r.URL.Query().Get("module")
	if module == "" {
		writeJSON(w, http.StatusOK, h.Menu)
		return
	}
	section, ok := h.Menu.Module(module)
	if !ok {
		h.fail(w, r, "get navigation", &generic.NotFoundError{Table: "navigation", ID: module})
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// ListActivity returns recent activity, filtered by ?table=, ?record_id=, ?limit=.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := generic.ActivityFilter{Table: q.Get("table"), RecordID: q.Get("record_id")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(w, r, "list activity", fieldError("limit", "must be a positive integer"))
			return
		}
		filter.Limit = n
	}
	entries, err := h.Store.ListActivity(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list activity", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(entries, toActivityDTO))
}

// ResetDatabase clears all data (for development/testing).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "reset database", err)
		return
	}
	h.setCurrentDataset("")
	h.Logger.Warn("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset complete"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest, "Invalid request"
	case generic.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case generic.IsConflict(err):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, generic.ErrGeneratorUnavailable):
		return http.StatusBadGateway, "Generator unavailable"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// fail logs err with the operation and request, then writes the mapped
// error response. Client errors log at info, the rest at error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := statusFor(err)
	entry := h.Logger.WithFields(logrus.Fields{
		"op":         op,
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	writeError(w, status, message, err)
}

// decode reads a JSON body into v and runs struct-tag validation.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", generic.ErrValidation, err)
	}
	return generic.ValidateStruct(v)
}

func fieldError(field, message string) error {
	verr := generic.NewValidationError()
	verr.Add(field, message)
	return verr
}

// record appends an activity entry. Failures are logged, never returned:
// the mutation already succeeded.
func (h *Handler) record(ctx context.Context, table, id string, action generic.Action, payload map[string]any) {
	h.Metrics.recordMutation(table, string(action))
	err := h.Store.AppendActivity(ctx, generic.Activity{
		Table:    table,
		RecordID: id,
		Action:   action,
		Payload:  payload,
	})
	if err != nil {
		h.Logger.WithFields(logrus.Fields{"table": table, "id": id, "action": action}).
			WithError(err).Warn("failed to record activity")
	}
}

// period reads ?from= and ?to= dates.
func period(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()
	p, err := generic.ParsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		return p, fieldError("from", err.Error())
	}
	return p, nil
}

func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// floatParam reads a required float query parameter.
func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fieldError(name, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fieldError(name, "must be a number")
	}
	return v, nil
}

func (h *Handler) setCurrentDataset(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentDataset = id
}

func (h *Handler) getCurrentDataset() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentDataset
}
