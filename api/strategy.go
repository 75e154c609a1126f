package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/strategy"
)

func (h *Handler) indicators() resource[strategy.StrategicIndicator, IndicatorRequest] {
	return resource[strategy.StrategicIndicator, IndicatorRequest]{
		table:  generic.TableIndicators,
		get:    h.Store.GetIndicator,
		save:   h.Store.SaveIndicator,
		remove: h.Store.DeleteIndicator,
		id:     func(in strategy.StrategicIndicator) string { return in.ID },
		toDTO:  func(in strategy.StrategicIndicator) any { return toIndicatorDTO(in) },
	}
}

// =============================================================================
// IDENTITY
// =============================================================================

func companyParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("company_id"))
	if id == "" {
		return "", fieldError("company_id", "is required")
	}
	return id, nil
}

func (h *Handler) loadIdentity(ctx context.Context, companyID string) (*strategy.StrategicIdentity, error) {
	ident, err := h.Store.GetIdentity(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, &generic.NotFoundError{Table: generic.TableIdentity, ID: companyID}
	}
	return ident, nil
}

// GetIdentity returns the identity of ?company_id=.
func (h *Handler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	companyID, err := companyParam(r)
	if err != nil {
		h.fail(w, r, "get identity", err)
		return
	}
	ident, err := h.loadIdentity(r.Context(), companyID)
	if err != nil {
		h.fail(w, r, "get identity", err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityDTO(*ident))
}

// PutIdentity stores a hand-written identity, replacing the company's
// current one.
func (h *Handler) PutIdentity(w http.ResponseWriter, r *http.Request) {
	const op = "put identity"
	var req IdentityRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	ident := strategy.StrategicIdentity{
		CompanyID: strings.TrimSpace(req.CompanyID),
		Mission:   req.Mission,
		Vision:    req.Vision,
		Values:    uniqueNonBlank(req.Values),
		Purpose:   req.Purpose,
	}
	if err := ident.Validate(); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.Store.SaveIdentity(r.Context(), &ident); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.record(r.Context(), generic.TableIdentity, ident.ID, generic.ActionUpdated, nil)
	writeJSON(w, http.StatusOK, toIdentityDTO(ident))
}

func (h *Handler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	companyID, err := companyParam(r)
	if err == nil {
		err = h.Store.DeleteIdentity(r.Context(), companyID)
	}
	if err != nil {
		h.fail(w, r, "delete identity", err)
		return
	}
	h.record(r.Context(), generic.TableIdentity, companyID, generic.ActionDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}

// GenerateIdentity runs the generator over the interview answers and
// stores the result as the company's identity.
func (h *Handler) GenerateIdentity(w http.ResponseWriter, r *http.Request) {
	const op = "generate identity"
	var req GenerateIdentityRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	ident, err := h.generateIdentity(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIdentityDTO(ident))
}

// generateIdentity is shared with identity questionnaire sessions.
func (h *Handler) generateIdentity(ctx context.Context, in strategy.IdentityInput) (strategy.StrategicIdentity, error) {
	draft, err := h.Generator.GenerateIdentity(ctx, in)
	h.Metrics.recordGeneration("identity", err)
	if err != nil {
		return strategy.StrategicIdentity{}, generatorErr(err)
	}
	ident := draft.ToIdentity(in.CompanyID)
	if err := ident.Validate(); err != nil {
		return ident, err
	}
	if err := h.Store.SaveIdentity(ctx, &ident); err != nil {
		return ident, err
	}
	h.record(ctx, generic.TableIdentity, ident.ID, generic.ActionGenerated, map[string]any{"company_id": in.CompanyID})
	return ident, nil
}

// generatorErr makes every generator failure map to 502.
func generatorErr(err error) error {
	if errors.Is(err, generic.ErrGeneratorUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", generic.ErrGeneratorUnavailable, err)
}

// =============================================================================
// INDICATORS
// =============================================================================

// ListIndicators supports ?company_id=, ?perspective=, ?q=, ?sort=.
func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Store.ListIndicators(r.Context(), q.Get("company_id"))
	if err == nil {
		items, err = strategy.IndicatorQuery{
			Perspective: q.Get("perspective"),
			Search:      q.Get("q"),
			Sort:        q.Get("sort"),
		}.Apply(items)
	}
	listJSON(h, w, r, "list indicators", items, err, toIndicatorDTO)
}

// GenerateIndicators derives indicators from the company's stored
// identity and saves them in one batch.
func (h *Handler) GenerateIndicators(w http.ResponseWriter, r *http.Request) {
	const op = "generate indicators"
	ctx := r.Context()
	var req GenerateIndicatorsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	ident, err := h.loadIdentity(ctx, req.CompanyID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	drafts, err := h.Generator.GenerateIndicators(ctx, strategy.IndicatorInput{
		CompanyID: ident.CompanyID,
		Mission:   ident.Mission,
		Vision:    ident.Vision,
		Values:    ident.Values,
		Count:     req.Count,
	})
	h.Metrics.recordGeneration("indicators", err)
	if err != nil {
		h.fail(w, r, op, generatorErr(err))
		return
	}

	items := make([]*strategy.StrategicIndicator, 0, len(drafts))
	for _, d := range drafts {
		in := d.ToIndicator(ident.CompanyID)
		if err := in.Validate(); err != nil {
			h.Logger.WithField("name", in.Name).WithError(err).Warn("skipping generated indicator")
			continue
		}
		items = append(items, &in)
	}

	if req.Replace {
		existing, err := h.Store.ListIndicators(ctx, ident.CompanyID)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		for _, in := range existing {
			if err := h.Store.DeleteIndicator(ctx, in.ID); err != nil {
				h.fail(w, r, op, err)
				return
			}
			h.record(ctx, generic.TableIndicators, in.ID, generic.ActionDeleted, nil)
		}
	}
	if err := h.Store.SaveIndicators(ctx, items); err != nil {
		h.fail(w, r, op, err)
		return
	}

	out := make([]IndicatorDTO, len(items))
	for i, in := range items {
		out[i] = toIndicatorDTO(*in)
		h.record(ctx, generic.TableIndicators, in.ID, generic.ActionGenerated, map[string]any{"company_id": in.CompanyID})
	}
	writeJSON(w, http.StatusCreated, out)
}
