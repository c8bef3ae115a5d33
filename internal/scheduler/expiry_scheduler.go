package scheduler

import (
	"context"
	"time"

	"github.com/kocaeli-bel/imar-backend/config"
	"github.com/kocaeli-bel/imar-backend/internal/app/service"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ExpiryScheduler ruhsat geçerlilik süresi takip zamanlayıcısı
type ExpiryScheduler struct {
	cron          *cron.Cron
	permitService service.PermitService
	spec          string
	warningDays   int
}

// NewExpiryScheduler ruhsat süre takip zamanlayıcısı oluşturur
func NewExpiryScheduler(permitService service.PermitService, cfg *config.SchedulerConfig) *ExpiryScheduler {
	return &ExpiryScheduler{
		cron:          cron.New(),
		permitService: permitService,
		spec:          cfg.ExpirySpec,
		warningDays:   cfg.ExpiryWarningDays,
	}
}

// Start zamanlayıcıyı başlatır
func (s *ExpiryScheduler) Start() error {
	// Her gün sabah 9'da süresi yaklaşan ruhsatları tara
	_, err := s.cron.AddFunc(s.spec, s.checkExpiringPermits)
	if err != nil {
		logger.Error("Failed to add cron job for permit expiry check", err)
		return err
	}

	s.cron.Start()
	logger.Info("Permit expiry scheduler started", map[string]interface{}{
		"spec":         s.spec,
		"warning_days": s.warningDays,
	})

	return nil
}

// Stop zamanlayıcıyı durdurur
func (s *ExpiryScheduler) Stop() {
	logger.Info("Stopping permit expiry scheduler...", nil)
	s.cron.Stop()
	logger.Info("Permit expiry scheduler stopped", nil)
}

func (s *ExpiryScheduler) checkExpiringPermits() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	apps, err := s.permitService.GetExpiringWithin(ctx, s.warningDays)
	if err != nil {
		logger.Error("Permit expiry scan failed", err)
		return
	}

	if len(apps) == 0 {
		logger.Info("Permit expiry scan complete, nothing expiring", map[string]interface{}{
			"warning_days": s.warningDays,
		})
		return
	}

	for _, app := range apps {
		logger.Warn("Permit validity ending soon", map[string]interface{}{
			"id":              app.ID,
			"basvuru_no":      app.BasvuruNo,
			"ruhsat_no":       app.RuhsatNo,
			"gecerlilik_sonu": app.RuhsatGecerlilikTarihi.String(),
			"basvuru_sahibi":  app.BasvuruSahibiAdi + " " + app.BasvuruSahibiSoyadi,
		})
	}

	logger.Info("Permit expiry scan complete", map[string]interface{}{
		"expiring_count": len(apps),
		"warning_days":   s.warningDays,
	})
}
