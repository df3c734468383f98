package handler

import (
	"net/http"

	"github.com/bloodcamp-api/internal/application/adminrequest"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// AdminRequestHandler handles the admin promotion workflow.
type AdminRequestHandler struct {
	svc adminrequest.Service
}

func NewAdminRequestHandler(svc adminrequest.Service) *AdminRequestHandler {
	return &AdminRequestHandler{svc: svc}
}

func (h *AdminRequestHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SendOTP(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent to email"})
}

func (h *AdminRequestHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	ar, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

func (h *AdminRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitAdminRequest
	if !decode(w, r, &req) {
		return
	}
	ar, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ar)
}

func (h *AdminRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: reqs, Count: len(reqs)})
}

func (h *AdminRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ar, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

// Decide handles both approve and reject, selected by the {decision} URL param.
func (h *AdminRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := callerID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var (
		ar  *domain.AdminRequest
		err error
	)
	switch chi.URLParam(r, "decision") {
	case "approve":
		ar, err = h.svc.Approve(r.Context(), id, reviewer)
	case "reject":
		ar, err = h.svc.Reject(r.Context(), id, reviewer)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}
