package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bloodcamp-api/internal/config"
	"github.com/bloodcamp-api/internal/domain"
	jwtinfra "github.com/bloodcamp-api/internal/infrastructure/jwt"
	"github.com/bloodcamp-api/internal/pkg/authz"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestProvider generates a fresh RSA key pair, writes them to temp files,
// and returns a *jwtinfra.Provider loaded through config.
func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	cfg := &config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         7 * 24 * time.Hour,
	}
	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)
	return p
}

type mockResolver struct{ mock.Mock }

func (m *mockResolver) Resolve(ctx context.Context, subject, kind string) (*authz.Principal, error) {
	args := m.Called(ctx, subject, kind)
	p, _ := args.Get(0).(*authz.Principal)
	return p, args.Error(1)
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

// capture records the principal seen by the wrapped handler.
func capture(got **authz.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader_PassesWithoutPrincipal(t *testing.T) {
	p := newTestProvider(t)
	res := &mockResolver{}

	var got *authz.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	Auth(p, res)(capture(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
	res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_BadToken_PassesWithoutPrincipal(t *testing.T) {
	p := newTestProvider(t)
	res := &mockResolver{}

	var got *authz.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	Auth(p, res)(capture(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
}

func TestAuth_ExpiredToken_IsIgnored(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := jwtinfra.NewProviderFromKeys(privKey, &privKey.PublicKey, time.Hour)

	claims := &jwtinfra.Claims{
		Kind: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privKey)
	require.NoError(t, err)

	res := &mockResolver{}
	var got *authz.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, res)(capture(&got)).ServeHTTP(rr, req)

	assert.Nil(t, got)
	res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_ValidToken_InjectsPrincipal(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("a1", "admin")
	require.NoError(t, err)

	res := &mockResolver{}
	want := &authz.Principal{ID: "a1", Kind: authz.KindAdmin, Role: authz.RoleMain}
	res.On("Resolve", mock.Anything, "a1", "admin").Return(want, nil)

	var got *authz.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, res)(capture(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, want, got)
	res.AssertExpectations(t)
}

func TestAuth_UnresolvedSubject_PassesWithoutPrincipal(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("gone", "user")
	require.NoError(t, err)

	res := &mockResolver{}
	res.On("Resolve", mock.Anything, "gone", "user").Return(nil, domain.ErrNotFound)

	var got *authz.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, res)(capture(&got)).ServeHTTP(rr, req)

	assert.Nil(t, got)
}

func TestAuth_ThenRequireRoles_RejectsMissingToken(t *testing.T) {
	p := newTestProvider(t)
	h := Auth(p, &mockResolver{})(RequireRoles(authz.TokenUser)(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"no token or invalid token"}`, rr.Body.String())
}

// --- StoreResolver ---

type stubUsers struct {
	u   *domain.User
	err error
}

func (s stubUsers) Get(context.Context, string) (*domain.User, error) { return s.u, s.err }

type stubAdmins struct {
	a   *domain.Admin
	err error
}

func (s stubAdmins) Get(context.Context, string) (*domain.Admin, error) { return s.a, s.err }

func TestStoreResolver_User(t *testing.T) {
	r := NewStoreResolver(stubUsers{u: &domain.User{UserID: "u1", Name: "Asha", Verified: true, Enable: true}}, stubAdmins{})
	p, err := r.Resolve(context.Background(), "u1", "user")
	require.NoError(t, err)
	assert.Equal(t, authz.KindUser, p.Kind)
	assert.Equal(t, authz.RoleNone, p.Role)
	assert.Equal(t, "u1", p.ID)
}

func TestStoreResolver_UnverifiedUserRejected(t *testing.T) {
	r := NewStoreResolver(stubUsers{u: &domain.User{UserID: "u1", Enable: true}}, stubAdmins{})
	_, err := r.Resolve(context.Background(), "u1", "user")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStoreResolver_AdminRoleFromStorage(t *testing.T) {
	r := NewStoreResolver(stubUsers{}, stubAdmins{a: &domain.Admin{AdminID: "a1", Role: domain.AdminRoleNormal, Enable: true}})
	p, err := r.Resolve(context.Background(), "a1", "admin")
	require.NoError(t, err)
	assert.Equal(t, authz.KindAdmin, p.Kind)
	assert.Equal(t, authz.RoleNormal, p.Role)
}

func TestStoreResolver_DisabledAdminRejected(t *testing.T) {
	r := NewStoreResolver(stubUsers{}, stubAdmins{a: &domain.Admin{AdminID: "a1", Role: domain.AdminRoleMain}})
	_, err := r.Resolve(context.Background(), "a1", "admin")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStoreResolver_UnknownKind(t *testing.T) {
	r := NewStoreResolver(stubUsers{}, stubAdmins{})
	_, err := r.Resolve(context.Background(), "x", "robot")
	assert.Error(t, err)
}
