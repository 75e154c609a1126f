package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/warp/business-admin/blob"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/quality"
)

var errNoBlobStore = errors.New("attachment storage is not configured")

func (h *Handler) documents() resource[quality.IsoDocument, DocumentRequest] {
	return resource[quality.IsoDocument, DocumentRequest]{
		table:  generic.TableDocuments,
		get:    h.Store.GetDocument,
		save:   h.Store.SaveDocument,
		remove: h.Store.DeleteDocument,
		id:     func(d quality.IsoDocument) string { return d.ID },
		toDTO:  func(d quality.IsoDocument) any { return toDocumentDTO(d, h.today()) },
		prepare: func(ctx context.Context, d *quality.IsoDocument) error {
			return exists(ctx, h.Store.GetEmployee, "owner_id", d.OwnerID)
		},
	}
}

func (h *Handler) documentDTO(d quality.IsoDocument) DocumentDTO {
	return toDocumentDTO(d, h.today())
}

// ListDocuments supports ?q=, ?status=, ?standard=, ?owner_id=, ?sort=.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDocuments(r.Context())
	if err == nil {
		q := r.URL.Query()
		items, err = quality.Query{
			Search:   q.Get("q"),
			Status:   q.Get("status"),
			Standard: q.Get("standard"),
			OwnerID:  q.Get("owner_id"),
			Sort:     q.Get("sort"),
		}.Apply(items)
	}
	listJSON(h, w, r, "list documents", items, err, h.documentDTO)
}

// ListDocumentsDue returns approved documents whose review date has passed.
func (h *Handler) ListDocumentsDue(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDocumentsDue(r.Context(), h.today())
	listJSON(h, w, r, "list documents due", items, err, h.documentDTO)
}

func (h *Handler) GetDocumentSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDocuments(r.Context())
	if err != nil {
		h.fail(w, r, "document summary", err)
		return
	}
	writeJSON(w, http.StatusOK, quality.Summarize(items, h.today()))
}

// DeleteDocument removes the record, then its attachment.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	const op = "delete document"
	ctx := r.Context()
	doc, err := h.documents().load(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.Store.DeleteDocument(ctx, doc.ID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.removeBlob(ctx, doc.Attachment.Key)
	h.record(ctx, generic.TableDocuments, doc.ID, generic.ActionDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}

// SetDocumentStatus moves a document along its review lifecycle.
func (h *Handler) SetDocumentStatus(w http.ResponseWriter, r *http.Request) {
	const op = "set document status"
	ctx := r.Context()
	doc, err := h.documents().load(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req StatusRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	from := doc.Status
	if err := doc.Transition(quality.Status(req.Status), h.now()); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.Store.SaveDocument(ctx, doc); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.record(ctx, generic.TableDocuments, doc.ID, generic.ActionUpdated, map[string]any{
		"from": string(from),
		"to":   string(doc.Status),
	})
	writeJSON(w, http.StatusOK, h.documentDTO(*doc))
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// UploadAttachment stores the "file" form field as the document's
// attachment, replacing any previous one.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	const op = "upload attachment"
	if h.Blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Attachments unavailable", errNoBlobStore)
		return
	}
	ctx := r.Context()
	doc, err := h.documents().load(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, op, fieldError("file", "an upload is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := blob.DocumentKey(doc.ID, header.Filename)
	info, err := h.Blobs.Put(ctx, key, file, contentType)
	if err != nil {
		h.fail(w, r, op, fmt.Errorf("store attachment: %w", err))
		return
	}

	previous := doc.Attachment.Key
	doc.Attachment = quality.Attachment{
		Key:         info.Key,
		Name:        header.Filename,
		Size:        info.Size,
		ContentType: contentType,
	}
	if err := h.Store.SaveDocument(ctx, doc); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if previous != "" && previous != info.Key {
		h.removeBlob(ctx, previous)
	}
	h.record(ctx, generic.TableDocuments, doc.ID, generic.ActionUpdated, map[string]any{"attachment": header.Filename})
	writeJSON(w, http.StatusOK, h.documentDTO(*doc))
}

// DownloadAttachment streams the document's attachment.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	const op = "download attachment"
	if h.Blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Attachments unavailable", errNoBlobStore)
		return
	}
	ctx := r.Context()
	doc, err := h.documents().load(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if doc.Attachment.IsZero() {
		h.fail(w, r, op, &generic.NotFoundError{Table: "attachment", ID: doc.ID})
		return
	}
	info, body, err := h.Blobs.Get(ctx, doc.Attachment.Key)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	defer body.Close()

	contentType := doc.Attachment.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Attachment.Name))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.Logger.WithFields(logrus.Fields{"op": op, "id": doc.ID}).WithError(err).Warn("attachment download interrupted")
	}
}

// removeBlob deletes key, logging failures; the record change already
// happened.
func (h *Handler) removeBlob(ctx context.Context, key string) {
	if key == "" || h.Blobs == nil {
		return
	}
	if err := h.Blobs.Delete(ctx, key); err != nil {
		h.Logger.WithField("key", key).WithError(err).Warn("failed to delete attachment")
	}
}
