package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
	"go.uber.org/zap"
)

// LicenseLogRepository persists the audit trail. The table rejects UPDATE
// and DELETE at the database level.
type LicenseLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLicenseLogRepository(db *pgxpool.Pool, logger *zap.Logger) *LicenseLogRepository {
	return &LicenseLogRepository{
		db:     db,
		logger: logger.Named("LicenseLogRepository"),
	}
}

var _ licenselog.Repository = (*LicenseLogRepository)(nil)

func (r *LicenseLogRepository) Append(ctx context.Context, entry *licenselog.LicenseLog) error {
	query := `
        INSERT INTO license_logs (license_id, ip, user_agent, result, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		entry.LicenseID,
		entry.IP,
		entry.UserAgent,
		entry.Result,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to append license log",
			zap.String("license_id", entry.LicenseID.String()),
			zap.String("result", string(entry.Result)),
			zap.Error(err),
		)
		return fmt.Errorf("database error appending license log: %w", err)
	}
	return nil
}

func (r *LicenseLogRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID, limit int) ([]*licenselog.LicenseLog, error) {
	query := `
        SELECT id, license_id, ip, user_agent, result, created_at
        FROM license_logs
        WHERE license_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, licenseID, licenselog.ClampPageSize(limit))
	if err != nil {
		r.logger.Error("Failed to query license logs", zap.String("license_id", licenseID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error listing license logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*licenselog.LicenseLog, 0)
	for rows.Next() {
		var entry licenselog.LicenseLog
		if err := rows.Scan(
			&entry.ID,
			&entry.LicenseID,
			&entry.IP,
			&entry.UserAgent,
			&entry.Result,
			&entry.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan license log row", zap.Error(err))
			return nil, fmt.Errorf("database scan error on license logs: %w", err)
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error on license logs: %w", err)
	}
	return logs, nil
}

func (r *LicenseLogRepository) CountByResult(ctx context.Context) (map[licenselog.Result]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT result, count(*) FROM license_logs GROUP BY result`)
	if err != nil {
		r.logger.Error("Failed to count license logs", zap.Error(err))
		return nil, fmt.Errorf("database error counting license logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[licenselog.Result]int64)
	for rows.Next() {
		var result licenselog.Result
		var n int64
		if err := rows.Scan(&result, &n); err != nil {
			return nil, fmt.Errorf("database scan error counting license logs: %w", err)
		}
		counts[result] = n
	}
	return counts, rows.Err()
}
