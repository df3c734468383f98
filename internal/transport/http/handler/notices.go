package handler

import (
	"net/http"

	"github.com/bloodcamp-api/internal/application/notice"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// NoticeHandler handles camp notice endpoints.
type NoticeHandler struct {
	svc       notice.Service
	maxUpload int64
}

func NewNoticeHandler(svc notice.Service, maxUpload int64) *NoticeHandler {
	return &NoticeHandler{svc: svc, maxUpload: maxUpload}
}

func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.NoticeInput
	if !decode(w, r, &in) {
		return
	}
	n, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	notices, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: notices, Count: len(notices)})
}

func (h *NoticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNoticeRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notice deleted"})
}

func (h *NoticeHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}
	in, closer, ok := readUpload(w, r, h.maxUpload)
	if !ok {
		return
	}
	defer closer.Close()
	n, err := h.svc.AddAttachment(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoticeHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RemoveAttachment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
