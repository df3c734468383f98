package handler

import (
	"context"
	"net/http"

	"github.com/bloodcamp-api/internal/application/attachment"
	"github.com/bloodcamp-api/internal/application/donor"
	"github.com/bloodcamp-api/internal/application/form"
	"github.com/bloodcamp-api/internal/domain"
	"github.com/bloodcamp-api/internal/pkg/authz"
	"github.com/bloodcamp-api/internal/pkg/eligibility"
	"github.com/bloodcamp-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// --- request helpers ---

// withParams injects chi URL params given as key/value pairs.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asPrincipal(r *http.Request, p *authz.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.PrincipalKey, p))
}

var (
	mainAdmin   = &authz.Principal{ID: "a1", Kind: authz.KindAdmin, Role: authz.RoleMain}
	normalAdmin = &authz.Principal{ID: "a2", Kind: authz.KindAdmin, Role: authz.RoleNormal}
	endUser     = &authz.Principal{ID: "u1", Kind: authz.KindUser}
)

// --- auth ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockAuthSvc) VerifySignup(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockAuthSvc) ResendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockAuthSvc) RequestLoginOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) LoginWithOTP(ctx context.Context, req domain.VerifyOTPRequest) (string, *domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockAuthSvc) Me(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

// --- admin ---

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Admin, error) {
	args := m.Called(ctx, req)
	a, _ := args.Get(1).(*domain.Admin)
	return args.String(0), a, args.Error(2)
}

func (m *mockAdminSvc) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	args := m.Called(ctx, adminID)
	a, _ := args.Get(0).(*domain.Admin)
	return a, args.Error(1)
}

func (m *mockAdminSvc) List(ctx context.Context, limit int, cursor string) ([]domain.Admin, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Admin), args.String(1), args.Error(2)
}

func (m *mockAdminSvc) ChangeRole(ctx context.Context, actorID, targetID, role string) (*domain.Admin, error) {
	args := m.Called(ctx, actorID, targetID, role)
	a, _ := args.Get(0).(*domain.Admin)
	return a, args.Error(1)
}

func (m *mockAdminSvc) Delete(ctx context.Context, actorID, targetID string) error {
	return m.Called(ctx, actorID, targetID).Error(0)
}

func (m *mockAdminSvc) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	return m.Called(ctx, name, email, password).Error(0)
}

// --- admin requests ---

type mockAdminRequestSvc struct{ mock.Mock }

func (m *mockAdminRequestSvc) SendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAdminRequestSvc) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AdminRequest, error) {
	args := m.Called(ctx, req)
	ar, _ := args.Get(0).(*domain.AdminRequest)
	return ar, args.Error(1)
}

func (m *mockAdminRequestSvc) Submit(ctx context.Context, req domain.SubmitAdminRequest) (*domain.AdminRequest, error) {
	args := m.Called(ctx, req)
	ar, _ := args.Get(0).(*domain.AdminRequest)
	return ar, args.Error(1)
}

func (m *mockAdminRequestSvc) List(ctx context.Context, status string) ([]domain.AdminRequest, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.AdminRequest), args.Error(1)
}

func (m *mockAdminRequestSvc) Get(ctx context.Context, requestID string) (*domain.AdminRequest, error) {
	args := m.Called(ctx, requestID)
	ar, _ := args.Get(0).(*domain.AdminRequest)
	return ar, args.Error(1)
}

func (m *mockAdminRequestSvc) Approve(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error) {
	args := m.Called(ctx, requestID, reviewerID)
	ar, _ := args.Get(0).(*domain.AdminRequest)
	return ar, args.Error(1)
}

func (m *mockAdminRequestSvc) Reject(ctx context.Context, requestID, reviewerID string) (*domain.AdminRequest, error) {
	args := m.Called(ctx, requestID, reviewerID)
	ar, _ := args.Get(0).(*domain.AdminRequest)
	return ar, args.Error(1)
}

// --- donors ---

type mockDonorSvc struct{ mock.Mock }

func (m *mockDonorSvc) Create(ctx context.Context, actorID string, req domain.CreateDonorRequest) (*donor.View, error) {
	args := m.Called(ctx, actorID, req)
	v, _ := args.Get(0).(*donor.View)
	return v, args.Error(1)
}

func (m *mockDonorSvc) Get(ctx context.Context, donorID string) (*donor.View, error) {
	args := m.Called(ctx, donorID)
	v, _ := args.Get(0).(*donor.View)
	return v, args.Error(1)
}

func (m *mockDonorSvc) List(ctx context.Context, f domain.DonorFilter, limit int, cursor string) ([]donor.View, string, error) {
	args := m.Called(ctx, f, limit, cursor)
	return args.Get(0).([]donor.View), args.String(1), args.Error(2)
}

func (m *mockDonorSvc) Update(ctx context.Context, donorID string, req domain.UpdateDonorRequest) (*donor.View, error) {
	args := m.Called(ctx, donorID, req)
	v, _ := args.Get(0).(*donor.View)
	return v, args.Error(1)
}

func (m *mockDonorSvc) Delete(ctx context.Context, donorID string) error {
	return m.Called(ctx, donorID).Error(0)
}

func (m *mockDonorSvc) RecordDonation(ctx context.Context, donorID string) (*donor.View, error) {
	args := m.Called(ctx, donorID)
	v, _ := args.Get(0).(*donor.View)
	return v, args.Error(1)
}

func (m *mockDonorSvc) Eligibility(ctx context.Context, donorID string) (eligibility.Result, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(eligibility.Result), args.Error(1)
}

// --- notices ---

type mockNoticeSvc struct{ mock.Mock }

func (m *mockNoticeSvc) Create(ctx context.Context, actorID string, in domain.NoticeInput) (*domain.Notice, error) {
	args := m.Called(ctx, actorID, in)
	n, _ := args.Get(0).(*domain.Notice)
	return n, args.Error(1)
}

func (m *mockNoticeSvc) List(ctx context.Context) ([]domain.Notice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Notice), args.Error(1)
}

func (m *mockNoticeSvc) Get(ctx context.Context, noticeID string) (*domain.Notice, error) {
	args := m.Called(ctx, noticeID)
	n, _ := args.Get(0).(*domain.Notice)
	return n, args.Error(1)
}

func (m *mockNoticeSvc) Update(ctx context.Context, noticeID string, req domain.UpdateNoticeRequest) (*domain.Notice, error) {
	args := m.Called(ctx, noticeID, req)
	n, _ := args.Get(0).(*domain.Notice)
	return n, args.Error(1)
}

func (m *mockNoticeSvc) Delete(ctx context.Context, noticeID string) error {
	return m.Called(ctx, noticeID).Error(0)
}

func (m *mockNoticeSvc) AddAttachment(ctx context.Context, actorID, noticeID string, in attachment.UploadInput) (*domain.Notice, error) {
	args := m.Called(ctx, actorID, noticeID, in)
	n, _ := args.Get(0).(*domain.Notice)
	return n, args.Error(1)
}

func (m *mockNoticeSvc) RemoveAttachment(ctx context.Context, noticeID, attachmentID string) (*domain.Notice, error) {
	args := m.Called(ctx, noticeID, attachmentID)
	n, _ := args.Get(0).(*domain.Notice)
	return n, args.Error(1)
}

// --- forms ---

type mockFormSvc struct{ mock.Mock }

func (m *mockFormSvc) Create(ctx context.Context, actorID string, in domain.FormInput) (*form.View, error) {
	args := m.Called(ctx, actorID, in)
	v, _ := args.Get(0).(*form.View)
	return v, args.Error(1)
}

func (m *mockFormSvc) List(ctx context.Context) ([]form.View, error) {
	args := m.Called(ctx)
	return args.Get(0).([]form.View), args.Error(1)
}

func (m *mockFormSvc) Get(ctx context.Context, formID string) (*form.View, error) {
	args := m.Called(ctx, formID)
	v, _ := args.Get(0).(*form.View)
	return v, args.Error(1)
}

func (m *mockFormSvc) Update(ctx context.Context, formID string, req domain.UpdateFormRequest) (*form.View, error) {
	args := m.Called(ctx, formID, req)
	v, _ := args.Get(0).(*form.View)
	return v, args.Error(1)
}

func (m *mockFormSvc) Delete(ctx context.Context, formID string) error {
	return m.Called(ctx, formID).Error(0)
}

func (m *mockFormSvc) AddAttachment(ctx context.Context, actorID, formID string, in attachment.UploadInput) (*form.View, error) {
	args := m.Called(ctx, actorID, formID, in)
	v, _ := args.Get(0).(*form.View)
	return v, args.Error(1)
}

func (m *mockFormSvc) RemoveAttachment(ctx context.Context, formID, attachmentID string) (*form.View, error) {
	args := m.Called(ctx, formID, attachmentID)
	v, _ := args.Get(0).(*form.View)
	return v, args.Error(1)
}
