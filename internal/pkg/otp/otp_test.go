package otp

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func holders() map[string]Holder {
	return map[string]Holder{
		"user":          &domain.User{UserID: "u1"},
		"admin_request": &domain.AdminRequest{RequestID: "r1"},
	}
}

func TestGenerate_CodeShapeAndExpiry(t *testing.T) {
	for name, h := range holders() {
		t.Run(name, func(t *testing.T) {
			code, err := Generate(h, t0)
			require.NoError(t, err)
			assert.Len(t, code, 6)
			n, err := strconv.Atoi(code)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 100000)
			assert.LessOrEqual(t, n, 999999)

			c := h.Challenge()
			require.NotNil(t, c)
			assert.Equal(t, code, c.Code)
			assert.Equal(t, t0.Add(5*time.Minute), c.ExpiresAt)
		})
	}
}

func TestNewCode_StaysInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		n, _ := strconv.Atoi(code)
		assert.True(t, n >= 100000 && n <= 999999, code)
	}
}

func TestGenerate_OverwritesPreviousChallenge(t *testing.T) {
	u := &domain.User{}
	first, err := Generate(u, t0)
	require.NoError(t, err)
	second, err := Generate(u, t0.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, second, u.OTP.Code)
	assert.Equal(t, t0.Add(6*time.Minute), u.OTP.ExpiresAt)
	if first != second {
		assert.False(t, Verify(u, first, t0.Add(2*time.Minute)))
	}
}

func TestVerify_BeforeExpiry(t *testing.T) {
	for name, h := range holders() {
		t.Run(name, func(t *testing.T) {
			code, err := Generate(h, t0)
			require.NoError(t, err)
			assert.True(t, Verify(h, code, t0.Add(4*time.Minute)))
			// Verify does not consume.
			assert.True(t, Verify(h, code, t0.Add(4*time.Minute)))
		})
	}
}

func TestVerify_ExactlyAtExpiryIsValid(t *testing.T) {
	u := &domain.User{}
	code, err := Generate(u, t0)
	require.NoError(t, err)
	assert.True(t, Verify(u, code, t0.Add(TTL)))
}

func TestVerify_OneMillisecondAfterExpiry(t *testing.T) {
	for name, h := range holders() {
		t.Run(name, func(t *testing.T) {
			code, err := Generate(h, t0)
			require.NoError(t, err)
			assert.False(t, Verify(h, code, t0.Add(TTL+time.Millisecond)))
		})
	}
}

func TestVerify_NoChallenge(t *testing.T) {
	for name, h := range holders() {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Verify(h, "123456", t0))
			assert.False(t, Verify(h, "", t0))
		})
	}
}

func TestVerify_WrongOrMalformedCandidate(t *testing.T) {
	u := &domain.User{OTP: &domain.OTPChallenge{Code: "482913", ExpiresAt: t0.Add(TTL)}}
	assert.False(t, Verify(u, "482914", t0))
	assert.False(t, Verify(u, " 482913", t0))
	assert.False(t, Verify(u, "abc", t0))
	assert.True(t, Verify(u, "482913", t0))
}

func TestClear(t *testing.T) {
	r := &domain.AdminRequest{}
	code, err := Generate(r, t0)
	require.NoError(t, err)
	Clear(r)
	assert.Nil(t, r.OTP)
	assert.False(t, Verify(r, code, t0))
}

func TestCheck_Reasons(t *testing.T) {
	u := &domain.User{}
	assert.True(t, errors.Is(Check(u, "123456", t0), domain.ErrBadRequest))

	code, err := Generate(u, t0)
	require.NoError(t, err)
	assert.NoError(t, Check(u, code, t0.Add(time.Minute)))
	assert.True(t, errors.Is(Check(u, "000000", t0), domain.ErrUnauthorized))
	assert.True(t, errors.Is(Check(u, "000000", t0), ErrMismatch))
	assert.True(t, errors.Is(Check(u, code, t0.Add(TTL+time.Second)), domain.ErrExpired))
}

func TestCheck_RefusesOnceAttemptsExhausted(t *testing.T) {
	u := &domain.User{OTP: &domain.OTPChallenge{Code: "482913", ExpiresAt: t0.Add(TTL), Attempts: MaxAttempts - 1}}
	assert.NoError(t, Check(u, "482913", t0))

	u.OTP.Attempts = MaxAttempts
	err := Check(u, "482913", t0)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.False(t, errors.Is(err, ErrMismatch))
	assert.False(t, Verify(u, "482913", t0))
}

func TestGenerate_ResetsAttempts(t *testing.T) {
	u := &domain.User{OTP: &domain.OTPChallenge{Code: "482913", ExpiresAt: t0.Add(TTL), Attempts: MaxAttempts}}
	code, err := Generate(u, t0)
	require.NoError(t, err)
	assert.Zero(t, u.OTP.Attempts)
	assert.NoError(t, Check(u, code, t0))
}

func TestSignupScenario(t *testing.T) {
	u := &domain.User{Email: "a@campus.edu"}
	code, err := Generate(u, t0)
	require.NoError(t, err)

	require.True(t, Verify(u, code, t0.Add(2*time.Minute)))
	u.Verified = true
	Clear(u)
	assert.True(t, u.Verified)

	late := &domain.User{}
	code, err = Generate(late, t0)
	require.NoError(t, err)
	assert.False(t, Verify(late, code, t0.Add(5*time.Minute+time.Second)))
}
