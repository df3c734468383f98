package donor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bloodcamp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockDonorStore struct{ mock.Mock }

func (m *mockDonorStore) Create(ctx context.Context, d *domain.Donor) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDonorStore) Get(ctx context.Context, donorID string) (*domain.Donor, error) {
	args := m.Called(ctx, donorID)
	if d, _ := args.Get(0).(*domain.Donor); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDonorStore) List(ctx context.Context, f domain.DonorFilter, now time.Time, limit int32, cursor string) ([]domain.Donor, string, error) {
	args := m.Called(ctx, f, now, limit, cursor)
	donors, _ := args.Get(0).([]domain.Donor)
	return donors, args.String(1), args.Error(2)
}
func (m *mockDonorStore) Update(ctx context.Context, donorID string, updates map[string]interface{}) error {
	return m.Called(ctx, donorID, updates).Error(0)
}
func (m *mockDonorStore) SoftDelete(ctx context.Context, donorID string) error {
	return m.Called(ctx, donorID).Error(0)
}
func (m *mockDonorStore) RecordDonation(ctx context.Context, donorID string, expectedVersion int64, at time.Time) error {
	return m.Called(ctx, donorID, expectedVersion, at).Error(0)
}

var t0 = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func newService(ds *mockDonorStore) Service {
	return NewService(ServiceDeps{DonorRepo: ds, Now: func() time.Time { return t0 }})
}

func daysAgo(n int) *time.Time {
	t := t0.AddDate(0, 0, -n)
	return &t
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validCreate() domain.CreateDonorRequest {
	return domain.CreateDonorRequest{Name: "Kiran", Phone: "9800000000", BloodGroup: "O+", Age: 20}
}

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Create", mock.Anything, mock.AnythingOfType("*domain.Donor")).Return(nil)

	req := validCreate()
	req.LastDonation = strPtr("2024-03-01")
	v, err := newService(ds).Create(context.Background(), "a1", req)

	require.NoError(t, err)
	assert.True(t, v.IsActive)
	assert.Equal(t, "a1", v.CreatedBy)
	assert.Equal(t, int64(0), v.Version)
	assert.False(t, v.Eligible)
	assert.Equal(t, 50, v.DaysRemaining)
}

func TestCreate_AgeBounds(t *testing.T) {
	for _, age := range []int{16, 17, 66} {
		req := validCreate()
		req.Age = age
		_, err := newService(&mockDonorStore{}).Create(context.Background(), "a1", req)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), "age %d", age)
	}
}

func TestCreate_ConfiguredMinAge(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(ServiceDeps{DonorRepo: ds, MinAge: 16, Now: func() time.Time { return t0 }})

	req := validCreate()
	req.Age = 16
	_, err := svc.Create(context.Background(), "a1", req)
	assert.NoError(t, err)
}

func TestCreate_BadLastDonation(t *testing.T) {
	for _, v := range []string{"10/03/2024", "2024-05-01"} {
		req := validCreate()
		req.LastDonation = strPtr(v)
		_, err := newService(&mockDonorStore{}).Create(context.Background(), "a1", req)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), v)
	}
}

// --- Get / Eligibility ---

func TestGet_InactiveIsNotFound(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1"}, nil)

	_, err := newService(ds).Get(context.Background(), "d1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEligibility(t *testing.T) {
	tests := []struct {
		name      string
		last      *time.Time
		eligible  bool
		remaining int
	}{
		{"never donated", nil, true, 0},
		{"89 days ago", daysAgo(89), false, 1},
		{"90 days ago", daysAgo(90), true, 0},
		{"just donated", daysAgo(0), false, 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds := &mockDonorStore{}
			ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true, LastDonation: tc.last}, nil)

			res, err := newService(ds).Eligibility(context.Background(), "d1")
			require.NoError(t, err)
			assert.Equal(t, tc.eligible, res.Eligible)
			assert.Equal(t, tc.remaining, res.DaysRemaining)
		})
	}
}

func TestView_JSONCarriesComputedFields(t *testing.T) {
	v := View{Donor: domain.Donor{DonorID: "d1", IsActive: true}}
	v.Result.DaysRemaining = 3
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"is_eligible_for_donation":false`)
	assert.Contains(t, string(b), `"days_until_eligible":3`)
	assert.Contains(t, string(b), `"id":"d1"`)
}

// --- RecordDonation ---

func TestRecordDonation_Eligible(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true, Version: 4, DonationCount: 2, LastDonation: daysAgo(120)}, nil)
	ds.On("RecordDonation", mock.Anything, "d1", int64(4), t0).Return(nil)

	v, err := newService(ds).RecordDonation(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, t0, *v.LastDonation)
	assert.Equal(t, 3, v.DonationCount)
	assert.Equal(t, int64(5), v.Version)
	assert.False(t, v.Eligible)
	assert.Equal(t, 90, v.DaysRemaining)
}

func TestRecordDonation_InCooldown(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true, LastDonation: daysAgo(30)}, nil)

	_, err := newService(ds).RecordDonation(context.Background(), "d1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "60 days")
	ds.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordDonation_LostRace(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true, Version: 1}, nil)
	ds.On("RecordDonation", mock.Anything, "d1", int64(1), t0).Return(domain.ErrConflict)

	_, err := newService(ds).RecordDonation(context.Background(), "d1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Update / Delete / List ---

func TestUpdate_Empty(t *testing.T) {
	_, err := newService(&mockDonorStore{}).Update(context.Background(), "d1", domain.UpdateDonorRequest{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_BuildsMap(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Update", mock.Anything, "d1", map[string]interface{}{
		fieldBloodGroup: "AB-",
		fieldAge:        30,
	}).Return(nil)
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true, BloodGroup: "AB-", Age: 30}, nil)

	v, err := newService(ds).Update(context.Background(), "d1", domain.UpdateDonorRequest{
		BloodGroup: strPtr("AB-"), Age: intPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, "AB-", v.BloodGroup)
}

func TestUpdate_RejectsUnderage(t *testing.T) {
	_, err := newService(&mockDonorStore{}).Update(context.Background(), "d1", domain.UpdateDonorRequest{Age: intPtr(17)})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDelete_Soft(t *testing.T) {
	ds := &mockDonorStore{}
	ds.On("Get", mock.Anything, "d1").Return(&domain.Donor{DonorID: "d1", IsActive: true}, nil)
	ds.On("SoftDelete", mock.Anything, "d1").Return(nil)

	require.NoError(t, newService(ds).Delete(context.Background(), "d1"))
	ds.AssertExpectations(t)
}

func TestList_PassesFilterAndComputesViews(t *testing.T) {
	ds := &mockDonorStore{}
	f := domain.DonorFilter{BloodGroup: "B+", EligibleOnly: true}
	ds.On("List", mock.Anything, f, t0, int32(50), "").Return([]domain.Donor{
		{DonorID: "d1", IsActive: true, LastDonation: daysAgo(100)},
	}, "", nil)

	views, next, err := newService(ds).List(context.Background(), f, 0, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, views, 1)
	assert.True(t, views[0].Eligible)
}

func TestList_InvalidBloodGroup(t *testing.T) {
	_, _, err := newService(&mockDonorStore{}).List(context.Background(), domain.DonorFilter{BloodGroup: "C+"}, 10, "")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
