package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"go.uber.org/zap"
)

const licenseColumns = `
            id, key, name, description, status, expires_at,
            allowed_ips, created_by, created_at, updated_at`

var licenseSortColumns = map[string]string{
	"created_at": "created_at",
	"expires_at": "expires_at",
	"updated_at": "updated_at",
	"name":       "name",
}

type LicenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLicenseRepository(db *pgxpool.Pool, logger *zap.Logger) *LicenseRepository {
	return &LicenseRepository{
		db:     db,
		logger: logger.Named("LicenseRepository"),
	}
}

var _ license.Repository = (*LicenseRepository)(nil)

func (r *LicenseRepository) Create(ctx context.Context, lic *license.License) (uuid.UUID, error) {
	query := `
        INSERT INTO licenses (
            key, name, description, status, expires_at, allowed_ips, created_by
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7
        ) RETURNING id
    `
	var insertedID uuid.UUID

	err := r.db.QueryRow(ctx, query,
		lic.Key,
		lic.Name,
		lic.Description,
		lic.Status,
		lic.ExpiresAt,
		license.NormalizeAllowedIPs(lic.AllowedIPs),
		lic.CreatedBy,
	).Scan(&insertedID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn("Attempted to create license with duplicate key",
				zap.String("constraint", pgErr.ConstraintName),
			)
			return uuid.Nil, license.ErrDuplicateKey
		}

		r.logger.Error("Failed to create license in database", zap.Error(err))
		return uuid.Nil, fmt.Errorf("database error on create license: %w", err)
	}

	r.logger.Info("License created successfully", zap.String("id", insertedID.String()))
	return insertedID, nil
}

func (r *LicenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*license.License, error) {
	query := `SELECT` + licenseColumns + `
        FROM licenses
        WHERE id = $1
    `
	return r.scanLicense(r.db.QueryRow(ctx, query, id))
}

func (r *LicenseRepository) FindByKey(ctx context.Context, key string) (*license.License, error) {
	query := `SELECT` + licenseColumns + `
        FROM licenses
        WHERE key = $1
    `
	return r.scanLicense(r.db.QueryRow(ctx, query, key))
}

// List returns non-deleted licenses unless params.Status asks for a
// specific status, together with the total number of matching rows.
func (r *LicenseRepository) List(ctx context.Context, params license.ListParams) ([]*license.License, int64, error) {
	where := `WHERE status <> 'DELETED'`
	args := []any{}
	if params.Status != nil {
		where = `WHERE status = $1`
		args = append(args, *params.Status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM licenses `+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count licenses", zap.Error(err))
		return nil, 0, fmt.Errorf("database error on count licenses: %w", err)
	}

	sortBy, ok := licenseSortColumns[params.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if params.SortOrder == "ASC" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM licenses %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		licenseColumns, where, sortBy, sortOrder, len(args)+1, len(args)+2)
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query list of licenses", zap.Error(err))
		return nil, 0, fmt.Errorf("database error on list licenses: %w", err)
	}
	defer rows.Close()

	licenses := make([]*license.License, 0)
	for rows.Next() {
		lic, err := r.scanLicense(rows)
		if err != nil {
			return nil, 0, err
		}
		licenses = append(licenses, lic)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating license rows", zap.Error(err))
		return nil, 0, fmt.Errorf("database iteration error on list licenses: %w", err)
	}

	return licenses, total, nil
}

func (r *LicenseRepository) Update(ctx context.Context, lic *license.License) error {
	query := `
        UPDATE licenses SET
            name = $1,
            description = $2,
            status = $3,
            expires_at = $4,
            allowed_ips = $5
        WHERE id = $6
    `

	cmdTag, err := r.db.Exec(ctx, query,
		lic.Name,
		lic.Description,
		lic.Status,
		lic.ExpiresAt,
		license.NormalizeAllowedIPs(lic.AllowedIPs),
		lic.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update license in database", zap.String("id", lic.ID.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", license.ErrUpdateFailed, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update license, but no rows were affected", zap.String("id", lic.ID.String()))
		return license.ErrNotFound
	}

	r.logger.Info("License updated successfully", zap.String("id", lic.ID.String()))
	return nil
}

func (r *LicenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status license.LicenseStatus) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE licenses SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		r.logger.Error("Failed to update license status", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", license.ErrUpdateFailed, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return license.ErrNotFound
	}

	r.logger.Info("License status updated", zap.String("id", id.String()), zap.String("status", string(status)))
	return nil
}

func (r *LicenseRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE licenses SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND expires_at < $1`, now)
	if err != nil {
		r.logger.Error("Failed to expire overdue licenses", zap.Error(err))
		return 0, fmt.Errorf("database error expiring licenses: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *LicenseRepository) CountByStatus(ctx context.Context) (map[license.LicenseStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM licenses GROUP BY status`)
	if err != nil {
		r.logger.Error("Failed to count licenses by status", zap.Error(err))
		return nil, fmt.Errorf("database error counting licenses: %w", err)
	}
	defer rows.Close()

	counts := make(map[license.LicenseStatus]int64)
	for rows.Next() {
		var status license.LicenseStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("database scan error counting licenses: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *LicenseRepository) scanLicense(row pgx.Row) (*license.License, error) {
	var lic license.License
	err := row.Scan(
		&lic.ID,
		&lic.Key,
		&lic.Name,
		&lic.Description,
		&lic.Status,
		&lic.ExpiresAt,
		&lic.AllowedIPs,
		&lic.CreatedBy,
		&lic.CreatedAt,
		&lic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, license.ErrNotFound
		}

		r.logger.Error("Failed to scan license row", zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &lic, nil
}
