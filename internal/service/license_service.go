package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/metrics"
	"go.uber.org/zap"
)

type LicenseService struct {
	repo   license.Repository
	logs   licenselog.Repository
	now    func() time.Time
	logger *zap.Logger
}

type LicenseServiceOption func(*LicenseService)

// WithLicenseClock overrides the time source used for expiry checks and
// audit timestamps.
func WithLicenseClock(now func() time.Time) LicenseServiceOption {
	return func(s *LicenseService) { s.now = now }
}

func NewLicenseService(repo license.Repository, logs licenselog.Repository, logger *zap.Logger, opts ...LicenseServiceOption) *LicenseService {
	s := &LicenseService{
		repo:   repo,
		logs:   logs,
		now:    time.Now,
		logger: logger.Named("LicenseService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckLicense decides whether key is usable from ip and records the attempt.
//
// Unknown and soft-deleted keys get the same "not found" answer and leave no
// audit entry. Every other outcome appends exactly one license log. Storage
// failures are never surfaced: the caller gets an invalid verdict instead.
func (s *LicenseService) CheckLicense(ctx context.Context, key, ip, userAgent string) license.Verdict {
	start := time.Now()
	verdict := s.checkLicense(ctx, key, ip, userAgent)

	metrics.LicenseChecks.WithLabelValues(string(verdict.Status)).Inc()
	metrics.LicenseCheckDuration.Observe(time.Since(start).Seconds())
	return verdict
}

func (s *LicenseService) checkLicense(ctx context.Context, key, ip, userAgent string) license.Verdict {
	lic, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, license.ErrNotFound) {
			s.logger.Debug("License check for unknown key", zap.String("ip", ip))
			return license.VerdictNotFound
		}
		s.logger.Error("License lookup failed during check", zap.String("ip", ip), zap.Error(err))
		return license.VerdictInternalError
	}

	if lic.Status == license.StatusDeleted {
		s.logger.Debug("License check for deleted license", zap.String("license_id", lic.ID.String()))
		return license.VerdictNotFound
	}

	now := s.now()
	verdict, result := evaluateLicense(lic, ip, now)

	entry := &licenselog.LicenseLog{
		LicenseID: lic.ID,
		IP:        ip,
		UserAgent: userAgent,
		Result:    result,
		CreatedAt: now,
	}
	// The audit write outlives a cancelled request.
	if err := s.logs.Append(context.WithoutCancel(ctx), entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Error("Failed to record license check",
			zap.String("license_id", lic.ID.String()),
			zap.String("result", string(result)),
			zap.Error(err),
		)
		return license.VerdictInternalError
	}

	s.logger.Debug("License checked",
		zap.String("license_id", lic.ID.String()),
		zap.String("ip", ip),
		zap.String("result", string(result)),
	)
	return verdict
}

// evaluateLicense applies the verification rules to a resolved, non-deleted
// license. The first matching rule wins.
func evaluateLicense(lic *license.License, ip string, now time.Time) (license.Verdict, licenselog.Result) {
	switch {
	case lic.Status == license.StatusBlocked:
		return license.Verdict{Status: license.VerdictBlocked, Message: "License is blocked"}, licenselog.ResultBlocked
	case lic.IsExpiredAt(now):
		return license.Verdict{Status: license.VerdictExpired, Message: "License has expired"}, licenselog.ResultExpired
	case !lic.AllowsIP(ip):
		return license.Verdict{Status: license.VerdictIPBlocked, Message: "IP address not allowed"}, licenselog.ResultIPBlocked
	default:
		return license.Verdict{Status: license.VerdictValid, Message: "License is valid"}, licenselog.ResultValid
	}
}

func (s *LicenseService) CreateLicense(ctx context.Context, req *dto.CreateLicenseRequest, createdBy uuid.UUID) (*license.License, error) {
	s.logger.Info("Attempting to create a new license", zap.String("created_by", createdBy.String()))

	newLicense := &license.License{
		Key:        uuid.NewString(),
		Status:     license.StatusActive,
		ExpiresAt:  req.ExpiresAt.UTC(),
		AllowedIPs: license.NormalizeAllowedIPs(req.AllowedIPs),
	}
	if createdBy != uuid.Nil {
		newLicense.CreatedBy = uuid.NullUUID{UUID: createdBy, Valid: true}
	}
	if req.Name != nil {
		newLicense.Name = sql.NullString{String: *req.Name, Valid: true}
	}
	if req.Description != nil {
		newLicense.Description = sql.NullString{String: *req.Description, Valid: true}
	}

	insertedID, err := s.repo.Create(ctx, newLicense)
	if err != nil {
		s.logger.Error("Failed to create license via repository", zap.Error(err))
		return nil, fmt.Errorf("repository error during license creation: %w", err)
	}

	createdLicense, err := s.repo.FindByID(ctx, insertedID)
	if err != nil {
		s.logger.Error("Failed to find newly created license by ID", zap.String("id", insertedID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve created license (id: %s): %w", insertedID, err)
	}

	s.logger.Info("License created successfully", zap.String("id", createdLicense.ID.String()))
	return createdLicense, nil
}

// GetLicenseByID hides soft-deleted licenses behind license.ErrNotFound.
func (s *LicenseService) GetLicenseByID(ctx context.Context, id uuid.UUID) (*license.License, error) {
	lic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, license.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to get license by ID", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error getting license %s: %w", id, err)
	}
	if lic.Status == license.StatusDeleted {
		return nil, license.ErrNotFound
	}
	return lic, nil
}

func (s *LicenseService) ListLicenses(ctx context.Context, req *dto.ListLicensesRequest) ([]*license.License, int64, error) {
	params := license.ListParams{
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	licenses, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("Failed to list licenses", zap.Error(err))
		return nil, 0, fmt.Errorf("repository error listing licenses: %w", err)
	}
	return licenses, total, nil
}

func (s *LicenseService) UpdateLicense(ctx context.Context, id uuid.UUID, req *dto.UpdateLicenseRequest) (*license.License, error) {
	lic, err := s.GetLicenseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		lic.Name = sql.NullString{String: *req.Name, Valid: *req.Name != ""}
	}
	if req.Description != nil {
		lic.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Status != nil {
		lic.Status = *req.Status
	}
	if req.ExpiresAt != nil {
		lic.ExpiresAt = req.ExpiresAt.UTC()
	}
	if req.AllowedIPs != nil {
		lic.AllowedIPs = license.NormalizeAllowedIPs(req.AllowedIPs)
	}

	if err := s.repo.Update(ctx, lic); err != nil {
		s.logger.Error("Failed to update license", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error updating license %s: %w", id, err)
	}

	s.logger.Info("License updated", zap.String("id", id.String()), zap.String("status", string(lic.Status)))
	return s.repo.FindByID(ctx, id)
}

// DeleteLicense soft-deletes a license. The row and its logs stay.
func (s *LicenseService) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetLicenseByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, license.StatusDeleted); err != nil {
		s.logger.Error("Failed to soft-delete license", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error deleting license %s: %w", id, err)
	}

	s.logger.Info("License deleted", zap.String("id", id.String()))
	return nil
}

func (s *LicenseService) ListLicenseLogs(ctx context.Context, id uuid.UUID, limit int) ([]*licenselog.LicenseLog, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	logs, err := s.logs.ListByLicense(ctx, id, licenselog.ClampPageSize(limit))
	if err != nil {
		s.logger.Error("Failed to list license logs", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error listing logs for %s: %w", id, err)
	}
	return logs, nil
}

// ExpireOverdue marks active licenses whose expiry passed as EXPIRED.
// CheckLicense does not depend on it.
func (s *LicenseService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("repository error expiring licenses: %w", err)
	}
	metrics.ExpiredBySweep.Add(float64(n))
	return n, nil
}

func (s *LicenseService) GetDashboardSummary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	statusCounts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error counting licenses: %w", err)
	}
	checkCounts, err := s.logs.CountByResult(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error counting license logs: %w", err)
	}

	summary := &dto.DashboardSummaryResponse{
		StatusCounts: statusCounts,
		CheckCounts:  checkCounts,
	}
	for status, n := range statusCounts {
		if status != license.StatusDeleted {
			summary.TotalLicenses += n
		}
	}
	for _, n := range checkCounts {
		summary.TotalChecks += n
	}
	return summary, nil
}
