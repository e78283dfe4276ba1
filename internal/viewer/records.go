package viewer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/filex"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/services"
	"github.com/go-chi/chi/v5"
)

type viewResponse struct {
	Kind     materialize.Kind `json:"kind"`
	URI      string           `json:"uri"`
	HTTPURL  string           `json:"http_url,omitempty"`
	MimeType string           `json:"mime_type"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	refs, err := h.records.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "list records", err)
		return
	}
	if refs == nil {
		refs = []*models.FileRecordReference{}
	}
	writeJSON(w, http.StatusOK, refs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		http.Error(w, "missing Content-Type", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	src := filex.Bytes{FileName: q.Get("name"), Data: body}
	opts := []services.UploadOption{services.WithTitle(q.Get("title"))}
	if tags := q["tag"]; len(tags) > 0 {
		opts = append(opts, services.WithTags(tags...))
	}

	ref, err := h.upload.UploadEncrypted(r.Context(), src, userIDFrom(r.Context()), mimeType, opts...)
	if err != nil {
		h.fail(w, r, "upload record", err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

func (h *Handler) viewRecord(w http.ResponseWriter, r *http.Request) {
	res, err := h.view.View(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if err != nil {
		h.fail(w, r, "view record", err)
		return
	}

	resp := viewResponse{Kind: res.Kind, URI: res.URI, MimeType: res.MimeType}
	if res.Kind == materialize.KindObjectURL {
		resp.HTTPURL = materialize.HTTPURL(res.URI)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context())); err != nil {
		h.fail(w, r, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), op+" failed", "error", err)
	} else {
		h.log.Warn(r.Context(), op+" failed", "error", err)
	}
	http.Error(w, strings.TrimSpace(userMessage(err)), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
