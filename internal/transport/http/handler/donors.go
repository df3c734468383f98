package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bloodcamp-api/internal/application/donor"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// DonorHandler handles donor registry endpoints.
type DonorHandler struct {
	svc donor.Service
}

func NewDonorHandler(svc donor.Service) *DonorHandler { return &DonorHandler{svc: svc} }

func (h *DonorHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}
	var req domain.CreateDonorRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.Create(r.Context(), actor, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseDonorFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, cursor := parsePage(r)
	donors, next, err := h.svc.List(r.Context(), f, limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: donors, NextCursor: next})
}

func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DonorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateDonorRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DonorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "donor deleted"})
}

func (h *DonorHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.RecordDonation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DonorHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Eligibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseDonorFilter reads ?blood_group= and ?eligible=. An unescaped "+" in a
// query string decodes to a space, so "A " is read back as "A+".
func parseDonorFilter(r *http.Request) (domain.DonorFilter, error) {
	var f domain.DonorFilter
	q := r.URL.Query()
	if bg := q.Get("blood_group"); bg != "" {
		bg = strings.ToUpper(strings.ReplaceAll(bg, " ", "+"))
		if !domain.ValidBloodGroup(bg) {
			return f, errors.New("invalid blood_group")
		}
		f.BloodGroup = bg
	}
	if e := q.Get("eligible"); e != "" {
		b, err := strconv.ParseBool(e)
		if err != nil {
			return f, errors.New("invalid eligible flag")
		}
		f.EligibleOnly = b
	}
	return f, nil
}
