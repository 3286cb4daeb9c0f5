package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jazijazi/jahadchecker/config"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
)

const (
	breakdownCacheTTL = 5 * time.Minute
	diffCacheTTL      = 60 * time.Second
)

var ErrProvinceNotFound = errors.New("استان مورد نظر یافت نشد")

// ReportService runs the read-only spatial aggregations over committed
// cadaster and flag data. Results live in an in-memory cache outside debug
// mode; nothing here mutates the records it reads.
type ReportService struct {
	DB    *gorm.DB
	cache *reportCache
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{
		DB:    db,
		cache: newReportCache(),
	}
}

type StatusCount struct {
	Status int    `json:"status"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

type BreakdownReport struct {
	ProvinceID int64         `json:"province_id"`
	Kind       string        `json:"kind"`
	Total      int64         `json:"total"`
	ByStatus   []StatusCount `json:"by_status"`
}

type StatusMismatch struct {
	CadasterID     int64  `json:"cadaster_id"`
	CadasterStatus int    `json:"cadaster_status"`
	CadasterLabel  string `json:"cadaster_status_label"`
	FlagID         int64  `json:"flag_id"`
	FlagStatus     int    `json:"flag_status"`
	FlagLabel      string `json:"flag_status_label"`
}

type DiffReport struct {
	ProvinceID     int64            `json:"province_id"`
	TotalCadasters int64            `json:"total_cadasters"`
	WithFlags      int64            `json:"with_flags"`
	MismatchCount  int              `json:"mismatch_count"`
	MatchedCount   int64            `json:"matched_count"`
	Mismatches     []StatusMismatch `json:"mismatches"`
}

func (s *ReportService) provinceExists(provinceID int64) error {
	var count int64
	s.DB.Model(&models.Province{}).Where("id = ?", provinceID).Count(&count)
	if count == 0 {
		return ErrProvinceNotFound
	}
	return nil
}

// CadasterBreakdown counts cadasters intersecting the province border per
// status, including statuses with zero rows.
func (s *ReportService) CadasterBreakdown(provinceID int64) (*BreakdownReport, error) {
	key := fmt.Sprintf("report:cadaster_by_province_status:%d", provinceID)
	if !config.Debug {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*BreakdownReport), nil
		}
	}

	if err := s.provinceExists(provinceID); err != nil {
		return nil, err
	}

	query := `
		SELECT c.status, COUNT(*) AS count
		FROM cadaster c, province p
		WHERE p.id = ? AND ST_Intersects(c.border, p.border)
		GROUP BY c.status
	`
	report, err := s.breakdown(provinceID, "cadaster", query, models.CadasterStatusLabels)
	if err != nil {
		return nil, err
	}

	if !config.Debug {
		s.cache.Set(key, report, breakdownCacheTTL)
	}
	return report, nil
}

// FlagBreakdown is the flag-shaped variant of CadasterBreakdown.
func (s *ReportService) FlagBreakdown(provinceID int64) (*BreakdownReport, error) {
	key := fmt.Sprintf("report:flag_by_province_status:%d", provinceID)
	if !config.Debug {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*BreakdownReport), nil
		}
	}

	if err := s.provinceExists(provinceID); err != nil {
		return nil, err
	}

	query := `
		SELECT f.status, COUNT(*) AS count
		FROM flag f, province p
		WHERE p.id = ? AND ST_Intersects(f.point, p.border)
		GROUP BY f.status
	`
	report, err := s.breakdown(provinceID, "flag", query, models.FlagStatusLabels)
	if err != nil {
		return nil, err
	}

	if !config.Debug {
		s.cache.Set(key, report, breakdownCacheTTL)
	}
	return report, nil
}

func (s *ReportService) breakdown(provinceID int64, kind, query string, labels map[int]string) (*BreakdownReport, error) {
	rows, err := s.DB.Raw(query, provinceID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64, len(labels))
	for rows.Next() {
		var status int
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		counts[status] = count
	}

	report := &BreakdownReport{ProvinceID: provinceID, Kind: kind}

	statuses := make([]int, 0, len(labels))
	for status := range labels {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	for _, status := range statuses {
		report.ByStatus = append(report.ByStatus, StatusCount{
			Status: status,
			Label:  labels[status],
			Count:  counts[status],
		})
		report.Total += counts[status]
	}
	return report, nil
}

// StatusDiff lists every (cadaster, flag) pair inside the province whose
// status codes disagree, with summary counts.
func (s *ReportService) StatusDiff(provinceID int64) (*DiffReport, error) {
	key := fmt.Sprintf("report:status_diff:%d", provinceID)
	if !config.Debug {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*DiffReport), nil
		}
	}

	if err := s.provinceExists(provinceID); err != nil {
		return nil, err
	}

	report := &DiffReport{ProvinceID: provinceID}

	totalQuery := `
		SELECT COUNT(*)
		FROM cadaster c, province p
		WHERE p.id = ? AND ST_Intersects(c.border, p.border)
	`
	if err := s.DB.Raw(totalQuery, provinceID).Scan(&report.TotalCadasters).Error; err != nil {
		return nil, err
	}

	pairQuery := `
		SELECT c.id, c.status, f.id, f.status
		FROM cadaster c
		JOIN flag f ON f.cadaster_id = c.id, province p
		WHERE p.id = ? AND ST_Intersects(c.border, p.border)
		ORDER BY c.id, f.id
	`
	rows, err := s.DB.Raw(pairQuery, provinceID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flagged := make(map[int64]bool)
	for rows.Next() {
		var cadasterID, flagID int64
		var cadasterStatus, flagStatus int
		if err := rows.Scan(&cadasterID, &cadasterStatus, &flagID, &flagStatus); err != nil {
			continue
		}
		flagged[cadasterID] = true
		if cadasterStatus != flagStatus {
			report.Mismatches = append(report.Mismatches, StatusMismatch{
				CadasterID:     cadasterID,
				CadasterStatus: cadasterStatus,
				CadasterLabel:  models.CadasterStatusLabels[cadasterStatus],
				FlagID:         flagID,
				FlagStatus:     flagStatus,
				FlagLabel:      models.FlagStatusLabels[flagStatus],
			})
		}
	}

	report.WithFlags = int64(len(flagged))
	report.MismatchCount = len(report.Mismatches)
	report.MatchedCount = report.WithFlags - int64(report.MismatchCount)

	if !config.Debug {
		s.cache.Set(key, report, diffCacheTTL)
	}
	return report, nil
}
