package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
)

type CreateLicenseRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	ExpiresAt   time.Time `json:"expires_at" binding:"required,gt"`
	AllowedIPs  []string  `json:"allowed_ips" binding:"omitempty,dive,ip|eq=*"`
}

type UpdateLicenseRequest struct {
	Name        *string                `json:"name" binding:"omitempty,max=255"`
	Description *string                `json:"description" binding:"omitempty,max=2000"`
	Status      *license.LicenseStatus `json:"status" binding:"omitempty,oneof=ACTIVE EXPIRED BLOCKED"`
	ExpiresAt   *time.Time             `json:"expires_at"`
	AllowedIPs  []string               `json:"allowed_ips" binding:"omitempty,dive,ip|eq=*"`
}

type LicenseResponse struct {
	ID          uuid.UUID             `json:"id"`
	Key         string                `json:"key"`
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      license.LicenseStatus `json:"status"`
	ExpiresAt   time.Time             `json:"expires_at"`
	AllowedIPs  []string              `json:"allowed_ips"`
	CreatedBy   *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func NewLicenseResponse(lic *license.License) *LicenseResponse {
	resp := &LicenseResponse{
		ID:         lic.ID,
		Key:        lic.Key,
		Status:     lic.Status,
		ExpiresAt:  lic.ExpiresAt,
		AllowedIPs: license.NormalizeAllowedIPs(lic.AllowedIPs),
		CreatedAt:  lic.CreatedAt,
		UpdatedAt:  lic.UpdatedAt,
	}
	if lic.Name.Valid {
		resp.Name = &lic.Name.String
	}
	if lic.Description.Valid {
		resp.Description = &lic.Description.String
	}
	if lic.CreatedBy.Valid {
		resp.CreatedBy = &lic.CreatedBy.UUID
	}
	return resp
}

type ListLicensesRequest struct {
	Status    *license.LicenseStatus `form:"status" binding:"omitempty,oneof=ACTIVE EXPIRED BLOCKED DELETED"`
	Limit     int                    `form:"limit,default=20" binding:"omitempty,gte=0,lte=200"`
	Offset    int                    `form:"offset,default=0" binding:"omitempty,gte=0"`
	SortBy    string                 `form:"sort_by,default=created_at" binding:"omitempty,oneof=created_at expires_at updated_at name"`
	SortOrder string                 `form:"sort_order,default=DESC" binding:"omitempty,oneof=ASC DESC"`
}

type PaginatedLicenseResponse struct {
	Licenses   []*LicenseResponse `json:"licenses"`
	TotalCount int64              `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

type ListLicenseLogsRequest struct {
	Limit int `form:"limit,default=50" binding:"omitempty,gte=1,lte=200"`
}

type LicenseLogResponse struct {
	ID        uuid.UUID         `json:"id"`
	LicenseID uuid.UUID         `json:"license_id"`
	IP        string            `json:"ip"`
	UserAgent string            `json:"user_agent"`
	Result    licenselog.Result `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewLicenseLogResponse(entry *licenselog.LicenseLog) *LicenseLogResponse {
	return &LicenseLogResponse{
		ID:        entry.ID,
		LicenseID: entry.LicenseID,
		IP:        entry.IP,
		UserAgent: entry.UserAgent,
		Result:    entry.Result,
		CreatedAt: entry.CreatedAt,
	}
}

// RateLimitedResponse is returned with HTTP 429 by the public check endpoint.
type RateLimitedResponse struct {
	Status     license.VerdictStatus `json:"status"`
	Message    string                `json:"message"`
	RetryAfter int64                 `json:"retryAfter"`
}
