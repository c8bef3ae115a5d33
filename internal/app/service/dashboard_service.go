package service

import (
	"context"
	"errors"
	"time"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"github.com/kocaeli-bel/imar-backend/pkg/redis"
)

const (
	dashboardCacheKey = "imar:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardSummary is the aggregate view the main screen renders.
// toplamBasvuru counts applications still in the pipeline; completed ones
// are excluded from it.
type DashboardSummary struct {
	BekleyenBasvuru   int64 `json:"bekleyenBasvuru"`
	IncelenenBasvuru  int64 `json:"incelenenBasvuru"`
	OnaylananBasvuru  int64 `json:"onaylananBasvuru"`
	ReddedilenBasvuru int64 `json:"reddedilenBasvuru"`
	BuAykiBasvuru     int64 `json:"buAykiBasvuru"`
	ToplamBasvuru     int64 `json:"toplamBasvuru"`
}

// TypeStatistics maps each application type to its active count.
type TypeStatistics map[model.ApplicationType]int64

// StatusStatistics maps each application status to its active count.
type StatusStatistics map[model.ApplicationStatus]int64

type DashboardService interface {
	GetSummary(ctx context.Context) (*DashboardSummary, error)
	GetTypeStatistics(ctx context.Context) (TypeStatistics, error)
	GetStatusStatistics(ctx context.Context) (StatusStatistics, error)
	InvalidateCache(ctx context.Context)
}

type dashboardService struct {
	permitRepo   repository.PermitRepository
	cacheEnabled bool
	now          func() time.Time
}

func NewDashboardService(permitRepo repository.PermitRepository, cacheEnabled bool) DashboardService {
	return &dashboardService{
		permitRepo:   permitRepo,
		cacheEnabled: cacheEnabled,
		now:          time.Now,
	}
}

// GetSummary returns the dashboard counters, served from Redis when the
// cache is enabled and warm. Cache failures degrade to live counts.
func (s *dashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	if s.cacheEnabled {
		var cached DashboardSummary
		err := redis.GetJSON(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn("Dashboard cache read failed, falling back to store", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		if err := redis.SetJSON(ctx, dashboardCacheKey, summary, dashboardCacheTTL); err != nil {
			logger.Warn("Dashboard cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return summary, nil
}

func (s *dashboardService) buildSummary(ctx context.Context) (*DashboardSummary, error) {
	counts := make(map[model.ApplicationStatus]int64, 4)
	for _, status := range []model.ApplicationStatus{
		model.StatusBeklemede,
		model.StatusInceleniyor,
		model.StatusOnaylandi,
		model.StatusReddedildi,
	} {
		n, err := s.permitRepo.CountByDurumu(ctx, status)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}

	nowT := s.now()
	thisMonth, err := s.permitRepo.CountByMonth(ctx, nowT.Year(), nowT.Month())
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		BekleyenBasvuru:   counts[model.StatusBeklemede],
		IncelenenBasvuru:  counts[model.StatusInceleniyor],
		OnaylananBasvuru:  counts[model.StatusOnaylandi],
		ReddedilenBasvuru: counts[model.StatusReddedildi],
		BuAykiBasvuru:     thisMonth,
	}
	summary.ToplamBasvuru = summary.BekleyenBasvuru + summary.IncelenenBasvuru +
		summary.OnaylananBasvuru + summary.ReddedilenBasvuru
	return summary, nil
}

func (s *dashboardService) GetTypeStatistics(ctx context.Context) (TypeStatistics, error) {
	stats := make(TypeStatistics, len(model.AllApplicationTypes))
	for _, tur := range model.AllApplicationTypes {
		n, err := s.permitRepo.CountByTuru(ctx, tur)
		if err != nil {
			return nil, err
		}
		stats[tur] = n
	}
	return stats, nil
}

func (s *dashboardService) GetStatusStatistics(ctx context.Context) (StatusStatistics, error) {
	stats := make(StatusStatistics, len(model.AllApplicationStatuses))
	for _, durum := range model.AllApplicationStatuses {
		n, err := s.permitRepo.CountByDurumu(ctx, durum)
		if err != nil {
			return nil, err
		}
		stats[durum] = n
	}
	return stats, nil
}

// InvalidateCache drops the cached summary after a write. Best effort.
func (s *dashboardService) InvalidateCache(ctx context.Context) {
	if !s.cacheEnabled {
		return
	}
	if err := redis.Delete(ctx, dashboardCacheKey); err != nil {
		logger.Warn("Dashboard cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
