package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/bloodcamp-api/internal/application/attachment"
)

const multipartMemory = 8 << 20

// readUpload parses the "file" field of a multipart request bounded by
// maxBytes. The returned closer must be called once the upload is consumed.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (attachment.UploadInput, io.Closer, bool) {
	if maxBytes > 0 {
		// Multipart framing adds a little on top of the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return attachment.UploadInput{}, nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return attachment.UploadInput{}, nil, false
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return attachment.UploadInput{}, nil, false
	}
	return attachment.UploadInput{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, f, true
}
