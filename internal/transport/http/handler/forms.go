package handler

import (
	"net/http"

	"github.com/bloodcamp-api/internal/application/form"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// FormHandler handles donation camp registration form endpoints.
type FormHandler struct {
	svc       form.Service
	maxUpload int64
}

func NewFormHandler(svc form.Service, maxUpload int64) *FormHandler {
	return &FormHandler{svc: svc, maxUpload: maxUpload}
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.FormInput
	if !decode(w, r, &in) {
		return
	}
	f, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: forms, Count: len(forms)})
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateFormRequest
	if !decode(w, r, &req) {
		return
	}
	f, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "form deleted"})
}

func (h *FormHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}
	in, closer, ok := readUpload(w, r, h.maxUpload)
	if !ok {
		return
	}
	defer closer.Close()
	f, err := h.svc.AddAttachment(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FormHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.RemoveAttachment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
