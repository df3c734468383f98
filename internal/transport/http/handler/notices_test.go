package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bloodcamp-api/internal/application/attachment"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// multipartFile builds a multipart body with a single "file" field.
func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestNoticeCreate_InvalidLink(t *testing.T) {
	h := NewNoticeHandler(&mockNoticeSvc{}, 1<<20)
	link := "not a url"
	r := asPrincipal(httptest.NewRequest(http.MethodPost, "/v1/notices",
		jsonBody(t, domain.NoticeInput{Title: "Camp", Content: "Saturday", Link: &link})), normalAdmin)
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestNoticeCreate_HappyPath(t *testing.T) {
	svc := &mockNoticeSvc{}
	in := domain.NoticeInput{Title: "Camp", Content: "Saturday in the main hall"}
	svc.On("Create", mock.Anything, "a2", in).Return(&domain.Notice{NoticeID: "n1", Title: "Camp"}, nil)
	h := NewNoticeHandler(svc, 1<<20)

	r := asPrincipal(httptest.NewRequest(http.MethodPost, "/v1/notices", jsonBody(t, in)), normalAdmin)
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestNoticeAddAttachment_ForwardsFile(t *testing.T) {
	svc := &mockNoticeSvc{}
	var got []byte
	svc.On("AddAttachment", mock.Anything, "a2", "n1", mock.MatchedBy(func(in attachment.UploadInput) bool {
		return in.Filename == "poster.pdf"
	})).Run(func(args mock.Arguments) {
		in := args.Get(3).(attachment.UploadInput)
		got, _ = io.ReadAll(in.Reader)
	}).Return(&domain.Notice{NoticeID: "n1", Attachments: []domain.Attachment{{AttachmentID: "at1"}}}, nil)
	h := NewNoticeHandler(svc, 1<<20)

	body, ct := multipartFile(t, "poster.pdf", []byte("%PDF-1.4 poster"))
	r := httptest.NewRequest(http.MethodPost, "/v1/notices/n1/attachments", body)
	r.Header.Set("Content-Type", ct)
	r = asPrincipal(withParams(r, "id", "n1"), normalAdmin)
	rr := httptest.NewRecorder()
	h.AddAttachment(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "%PDF-1.4 poster", string(got))
	svc.AssertExpectations(t)
}

func TestNoticeAddAttachment_MissingFileField(t *testing.T) {
	h := NewNoticeHandler(&mockNoticeSvc{}, 1<<20)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/v1/notices/n1/attachments", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r = asPrincipal(withParams(r, "id", "n1"), normalAdmin)
	rr := httptest.NewRecorder()
	h.AddAttachment(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNoticeAddAttachment_TooLarge(t *testing.T) {
	h := NewNoticeHandler(&mockNoticeSvc{}, 16)
	body, ct := multipartFile(t, "big.bin", bytes.Repeat([]byte("x"), 2<<20))
	r := httptest.NewRequest(http.MethodPost, "/v1/notices/n1/attachments", body)
	r.Header.Set("Content-Type", ct)
	r = asPrincipal(withParams(r, "id", "n1"), normalAdmin)
	rr := httptest.NewRecorder()
	h.AddAttachment(rr, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestNoticeRemoveAttachment_NotFound(t *testing.T) {
	svc := &mockNoticeSvc{}
	svc.On("RemoveAttachment", mock.Anything, "n1", "missing").
		Return(nil, fmt.Errorf("attachment missing: %w", domain.ErrNotFound))
	h := NewNoticeHandler(svc, 1<<20)

	r := withParams(httptest.NewRequest(http.MethodDelete, "/v1/notices/n1/attachments/missing", nil),
		"id", "n1", "attachmentID", "missing")
	rr := httptest.NewRecorder()
	h.RemoveAttachment(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNoticeList_Public(t *testing.T) {
	svc := &mockNoticeSvc{}
	svc.On("List", mock.Anything).Return([]domain.Notice{{NoticeID: "n2"}, {NoticeID: "n1"}}, nil)
	h := NewNoticeHandler(svc, 1<<20)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notices", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":2`)
}
