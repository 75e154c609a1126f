package api

import (
	"context"
	"net/http"

	"github.com/warp/business-admin/generic"
)

// validatable is every stored domain record.
type validatable interface {
	Validate() error
}

// applier is a request DTO that writes its fields onto a record.
type applier[T any] interface {
	apply(*T) error
}

// resource wires the get/create/update/delete handlers of one table.
// List handlers stay per module since every table filters differently.
type resource[T validatable, R applier[T]] struct {
	table  string
	get    func(context.Context, string) (*T, error)
	save   func(context.Context, *T) error
	remove func(context.Context, string) error
	id     func(T) string
	toDTO  func(T) any
	// prepare runs after apply, before Validate: derived fields and
	// reference checks.
	prepare func(context.Context, *T) error
	// guard runs on the stored record before it is updated or deleted.
	guard func(context.Context, *T) error
}

func (res resource[T, R]) load(ctx context.Context, id string) (*T, error) {
	rec, err := res.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &generic.NotFoundError{Table: res.table, ID: id}
	}
	return rec, nil
}

func (res resource[T, R]) write(ctx context.Context, req R, rec *T) error {
	if err := req.apply(rec); err != nil {
		return err
	}
	if res.prepare != nil {
		if err := res.prepare(ctx, rec); err != nil {
			return err
		}
	}
	if err := (*rec).Validate(); err != nil {
		return err
	}
	return res.save(ctx, rec)
}

func (res resource[T, R]) Get(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := res.load(r.Context(), urlID(r))
		if err != nil {
			h.fail(w, r, "get "+res.table, err)
			return
		}
		writeJSON(w, http.StatusOK, res.toDTO(*rec))
	}
}

func (res resource[T, R]) Create(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		if err := decode(r, &req); err != nil {
			h.fail(w, r, "create "+res.table, err)
			return
		}
		var rec T
		if err := res.write(r.Context(), req, &rec); err != nil {
			h.fail(w, r, "create "+res.table, err)
			return
		}
		h.record(r.Context(), res.table, res.id(rec), generic.ActionCreated, nil)
		writeJSON(w, http.StatusCreated, res.toDTO(rec))
	}
}

func (res resource[T, R]) Update(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := res.load(r.Context(), urlID(r))
		if err == nil && res.guard != nil {
			err = res.guard(r.Context(), rec)
		}
		if err != nil {
			h.fail(w, r, "update "+res.table, err)
			return
		}
		var req R
		if err := decode(r, &req); err != nil {
			h.fail(w, r, "update "+res.table, err)
			return
		}
		if err := res.write(r.Context(), req, rec); err != nil {
			h.fail(w, r, "update "+res.table, err)
			return
		}
		h.record(r.Context(), res.table, res.id(*rec), generic.ActionUpdated, nil)
		writeJSON(w, http.StatusOK, res.toDTO(*rec))
	}
}

func (res resource[T, R]) Delete(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlID(r)
		if res.guard != nil {
			rec, err := res.load(r.Context(), id)
			if err == nil {
				err = res.guard(r.Context(), rec)
			}
			if err != nil {
				h.fail(w, r, "delete "+res.table, err)
				return
			}
		}
		if err := res.remove(r.Context(), id); err != nil {
			h.fail(w, r, "delete "+res.table, err)
			return
		}
		h.record(r.Context(), res.table, id, generic.ActionDeleted, nil)
		w.WriteHeader(http.StatusNoContent)
	}
}

// listJSON writes a filtered list, mapping query errors to 400.
func listJSON[T, D any](h *Handler, w http.ResponseWriter, r *http.Request, op string, items []T, err error, toDTO func(T) D) {
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toDTO))
}
