package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateLicense_Defaults(t *testing.T) {
	f := newVerifierFixture(t)
	creator := uuid.New()

	lic, err := f.svc.CreateLicense(context.Background(), &dto.CreateLicenseRequest{
		Name:      ptr("Acme"),
		ExpiresAt: testNow.Add(time.Hour),
	}, creator)
	require.NoError(t, err)

	assert.Equal(t, license.StatusActive, lic.Status)
	assert.Equal(t, []string{"*"}, lic.AllowedIPs)
	assert.Equal(t, "Acme", lic.Name.String)
	assert.False(t, lic.Description.Valid)
	assert.Equal(t, creator, lic.CreatedBy.UUID)
	_, err = uuid.Parse(lic.Key)
	assert.NoError(t, err, "license key is a random uuid")

	other, err := f.svc.CreateLicense(context.Background(), &dto.CreateLicenseRequest{ExpiresAt: testNow.Add(time.Hour)}, creator)
	require.NoError(t, err)
	assert.NotEqual(t, lic.Key, other.Key)
}

func TestUpdateLicense_KeepsKeyAndAppliesFields(t *testing.T) {
	f := newVerifierFixture(t)
	lic := f.seed(t, license.StatusActive, testNow.Add(time.Hour), "*")

	newExpiry := testNow.Add(48 * time.Hour)
	updated, err := f.svc.UpdateLicense(context.Background(), lic.ID, &dto.UpdateLicenseRequest{
		Name:       ptr("Renamed"),
		Status:     ptr(license.StatusBlocked),
		ExpiresAt:  &newExpiry,
		AllowedIPs: []string{"192.168.0.10"},
	})
	require.NoError(t, err)

	assert.Equal(t, lic.Key, updated.Key)
	assert.Equal(t, "Renamed", updated.Name.String)
	assert.Equal(t, license.StatusBlocked, updated.Status)
	assert.Equal(t, newExpiry, updated.ExpiresAt)
	assert.Equal(t, []string{"192.168.0.10"}, updated.AllowedIPs)

	assert.Equal(t, license.VerdictBlocked, f.svc.CheckLicense(context.Background(), lic.Key, "192.168.0.10", "").Status)

	unblocked, err := f.svc.UpdateLicense(context.Background(), lic.ID, &dto.UpdateLicenseRequest{
		Status:     ptr(license.StatusActive),
		AllowedIPs: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, unblocked.AllowedIPs)
	assert.Equal(t, license.VerdictValid, f.svc.CheckLicense(context.Background(), lic.Key, "8.8.8.8", "").Status)
}

func TestDeleteLicense_IsSoftAndTerminal(t *testing.T) {
	f := newVerifierFixture(t)
	lic := f.seed(t, license.StatusActive, testNow.Add(time.Hour), "*")
	f.svc.CheckLicense(context.Background(), lic.Key, "1.2.3.4", "")

	require.NoError(t, f.svc.DeleteLicense(context.Background(), lic.ID))

	stored, err := f.licenses.FindByID(context.Background(), lic.ID)
	require.NoError(t, err, "row is retained")
	assert.Equal(t, license.StatusDeleted, stored.Status)

	_, err = f.svc.GetLicenseByID(context.Background(), lic.ID)
	assert.ErrorIs(t, err, license.ErrNotFound)

	_, err = f.svc.UpdateLicense(context.Background(), lic.ID, &dto.UpdateLicenseRequest{Status: ptr(license.StatusActive)})
	assert.ErrorIs(t, err, license.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteLicense(context.Background(), lic.ID), license.ErrNotFound)

	logs, err := f.svc.ListLicenseLogs(context.Background(), lic.ID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "audit trail of deleted license stays readable")

	list, total, err := f.svc.ListLicenses(context.Background(), &dto.ListLicensesRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestListLicenseLogs_NewestFirstAndBounded(t *testing.T) {
	f := newVerifierFixture(t)
	lic := f.seed(t, license.StatusActive, testNow.Add(time.Hour), "10.0.0.1")

	f.svc.CheckLicense(context.Background(), lic.Key, "10.0.0.1", "")
	f.svc.CheckLicense(context.Background(), lic.Key, "10.0.0.2", "")
	f.svc.CheckLicense(context.Background(), lic.Key, "10.0.0.3", "")

	logs, err := f.svc.ListLicenseLogs(context.Background(), lic.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "10.0.0.3", logs[0].IP)
	assert.Equal(t, "10.0.0.2", logs[1].IP)

	_, err = f.svc.ListLicenseLogs(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, license.ErrNotFound)
}

func TestExpireOverdue(t *testing.T) {
	f := newVerifierFixture(t)
	overdue := f.seed(t, license.StatusActive, testNow.Add(-time.Minute), "*")
	current := f.seed(t, license.StatusActive, testNow.Add(time.Minute), "*")
	blocked := f.seed(t, license.StatusBlocked, testNow.Add(-time.Minute), "*")

	n, err := f.svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for id, want := range map[uuid.UUID]license.LicenseStatus{
		overdue.ID: license.StatusExpired,
		current.ID: license.StatusActive,
		blocked.ID: license.StatusBlocked,
	} {
		lic, err := f.licenses.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, lic.Status)
	}
}

func TestGetDashboardSummary(t *testing.T) {
	f := newVerifierFixture(t)
	active := f.seed(t, license.StatusActive, testNow.Add(time.Hour), "10.0.0.1")
	f.seed(t, license.StatusBlocked, testNow.Add(time.Hour), "*")
	f.seed(t, license.StatusDeleted, testNow.Add(time.Hour), "*")

	f.svc.CheckLicense(context.Background(), active.Key, "10.0.0.1", "")
	f.svc.CheckLicense(context.Background(), active.Key, "10.0.0.9", "")

	summary, err := f.svc.GetDashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalLicenses)
	assert.Equal(t, int64(1), summary.StatusCounts[license.StatusDeleted])
	assert.Equal(t, int64(2), summary.TotalChecks)
	assert.Equal(t, int64(1), summary.CheckCounts[licenselog.ResultValid])
	assert.Equal(t, int64(1), summary.CheckCounts[licenselog.ResultIPBlocked])
}
