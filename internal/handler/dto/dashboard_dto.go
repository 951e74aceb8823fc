package dto

import (
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
)

type DashboardSummaryResponse struct {
	TotalLicenses int64                           `json:"totalLicenses"`
	StatusCounts  map[license.LicenseStatus]int64 `json:"statusCounts"`
	CheckCounts   map[licenselog.Result]int64     `json:"checkCounts"`
	TotalChecks   int64                           `json:"totalChecks"`
}
