package handler

import (
	"net/http"
	"strings"

	"github.com/bloodcamp-api/internal/application/attachment"
)

// AttachmentHandler issues short-lived download links for stored attachments.
type AttachmentHandler struct {
	svc attachment.Service
}

func NewAttachmentHandler(svc attachment.Service) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

func (h *AttachmentHandler) Presign(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if !strings.HasPrefix(key, attachment.KeyPrefix) || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid attachment key")
		return
	}
	url, err := h.svc.PresignedURL(r.Context(), key)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
