package repository

import (
	"context"
	"strings"
	"time"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"gorm.io/gorm"
)

// PermitRepository is the durable store for permit applications. Every list,
// search and count operation is scoped to aktif = 1; inactive records stay in
// the table but are invisible to the lifecycle API.
type PermitRepository interface {
	Create(ctx context.Context, app *model.PermitApplication) error
	BulkCreate(ctx context.Context, apps []model.PermitApplication, batchSize int) error
	FindByID(ctx context.Context, id uint) (*model.PermitApplication, error)
	FindActiveByID(ctx context.Context, id uint) (*model.PermitApplication, error)
	FindByBasvuruNo(ctx context.Context, basvuruNo string) (*model.PermitApplication, error)
	FindAllActive(ctx context.Context) ([]model.PermitApplication, error)
	FindByTuru(ctx context.Context, tur model.ApplicationType) ([]model.PermitApplication, error)
	FindByDurumu(ctx context.Context, durum model.ApplicationStatus) ([]model.PermitApplication, error)
	FindByTcno(ctx context.Context, tcno string) ([]model.PermitApplication, error)
	FindByBasvuruTarihi(ctx context.Context, start, end model.DateOnly) ([]model.PermitApplication, error)
	FindByRuhsatTarihi(ctx context.Context, start, end model.DateOnly) ([]model.PermitApplication, error)
	Search(ctx context.Context, keyword string) ([]model.PermitApplication, error)
	FindPending(ctx context.Context) ([]model.PermitApplication, error)
	FindApproved(ctx context.Context) ([]model.PermitApplication, error)
	FindExpiring(ctx context.Context, until model.DateOnly) ([]model.PermitApplication, error)
	CountByTuru(ctx context.Context, tur model.ApplicationType) (int64, error)
	CountByDurumu(ctx context.Context, durum model.ApplicationStatus) (int64, error)
	CountByMonth(ctx context.Context, year int, month time.Month) (int64, error)
	// UpdateFields applies the given column updates to the active record with
	// the given id in a single guarded statement and reports how many rows
	// were touched (0 means missing or inactive).
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (int64, error)
}

type permitRepository struct {
	db *gorm.DB
}

func NewPermitRepository(db *gorm.DB) PermitRepository {
	return &permitRepository{db: db}
}

func (r *permitRepository) Create(ctx context.Context, app *model.PermitApplication) error {
	logger.Debug("Creating permit application in database", map[string]interface{}{
		"basvuru_no":   app.BasvuruNo,
		"basvuru_turu": app.BasvuruTuru,
	})

	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		logger.Error("Failed to create permit application in database", err, map[string]interface{}{
			"basvuru_no": app.BasvuruNo,
		})
		return err
	}

	logger.Debug("Permit application created in database", map[string]interface{}{
		"id":         app.ID,
		"basvuru_no": app.BasvuruNo,
	})
	return nil
}

func (r *permitRepository) BulkCreate(ctx context.Context, apps []model.PermitApplication, batchSize int) error {
	logger.Info("Bulk creating permit applications", map[string]interface{}{
		"count":      len(apps),
		"batch_size": batchSize,
	})

	if err := r.db.WithContext(ctx).CreateInBatches(apps, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create permit applications", err, map[string]interface{}{
			"count": len(apps),
		})
		return err
	}
	return nil
}

func (r *permitRepository) FindByID(ctx context.Context, id uint) (*model.PermitApplication, error) {
	var app model.PermitApplication
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *permitRepository) FindActiveByID(ctx context.Context, id uint) (*model.PermitApplication, error) {
	var app model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("id = ? AND aktif = 1", id).
		First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *permitRepository) FindByBasvuruNo(ctx context.Context, basvuruNo string) (*model.PermitApplication, error) {
	var app model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_no = ? AND aktif = 1", basvuruNo).
		First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *permitRepository) FindAllActive(ctx context.Context) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("aktif = 1").
		Order("olusturma_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to list permit applications", err, nil)
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindByTuru(ctx context.Context, tur model.ApplicationType) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_turu = ? AND aktif = 1", tur).
		Order("olusturma_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications by type", err, map[string]interface{}{
			"basvuru_turu": tur,
		})
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindByDurumu(ctx context.Context, durum model.ApplicationStatus) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_durumu = ? AND aktif = 1", durum).
		Order("olusturma_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications by status", err, map[string]interface{}{
			"basvuru_durumu": durum,
		})
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindByTcno(ctx context.Context, tcno string) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_sahibi_tcno = ? AND aktif = 1", tcno).
		Order("olusturma_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications by national id", err, nil)
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindByBasvuruTarihi(ctx context.Context, start, end model.DateOnly) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_tarihi BETWEEN ? AND ? AND aktif = 1", start, end).
		Order("basvuru_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications by application date range", err, map[string]interface{}{
			"start": start.String(),
			"end":   end.String(),
		})
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindByRuhsatTarihi(ctx context.Context, start, end model.DateOnly) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("ruhsat_tarihi BETWEEN ? AND ? AND aktif = 1", start, end).
		Order("ruhsat_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications by permit date range", err, map[string]interface{}{
			"start": start.String(),
			"end":   end.String(),
		})
		return nil, err
	}
	return apps, nil
}

// Search matches the keyword against applicant name/surname, application
// number, parcel address and permit number. The aktif filter applies to the
// whole disjunction so inactive records never surface.
func (r *permitRepository) Search(ctx context.Context, keyword string) ([]model.PermitApplication, error) {
	kw := "%" + strings.ToLower(keyword) + "%"

	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where(`(LOWER(basvuru_sahibi_adi) LIKE ? OR LOWER(basvuru_sahibi_soyadi) LIKE ? OR `+
			`LOWER(basvuru_no) LIKE ? OR LOWER(arsa_adresi) LIKE ? OR LOWER(ruhsat_no) LIKE ?) AND aktif = 1`,
			kw, kw, kw, kw, kw).
		Order("olusturma_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to search permit applications", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, err
	}

	logger.Debug("Permit application search completed", map[string]interface{}{
		"keyword": keyword,
		"count":   len(apps),
	})
	return apps, nil
}

func (r *permitRepository) FindPending(ctx context.Context) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_durumu = ? AND aktif = 1", model.StatusBeklemede).
		Order("basvuru_tarihi ASC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find pending applications", err, nil)
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindApproved(ctx context.Context) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("basvuru_durumu = ? AND aktif = 1", model.StatusOnaylandi).
		Order("onay_tarihi DESC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find approved applications", err, nil)
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) FindExpiring(ctx context.Context, until model.DateOnly) ([]model.PermitApplication, error) {
	var apps []model.PermitApplication
	if err := r.db.WithContext(ctx).
		Where("ruhsat_gecerlilik_tarihi IS NOT NULL AND ruhsat_gecerlilik_tarihi <= ? AND aktif = 1", until).
		Order("ruhsat_gecerlilik_tarihi ASC").
		Find(&apps).Error; err != nil {
		logger.Error("Failed to find expiring permits", err, map[string]interface{}{
			"until": until.String(),
		})
		return nil, err
	}
	return apps, nil
}

func (r *permitRepository) CountByTuru(ctx context.Context, tur model.ApplicationType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PermitApplication{}).
		Where("basvuru_turu = ? AND aktif = 1", tur).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count applications by type", err, map[string]interface{}{
			"basvuru_turu": tur,
		})
		return 0, err
	}
	return count, nil
}

func (r *permitRepository) CountByDurumu(ctx context.Context, durum model.ApplicationStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PermitApplication{}).
		Where("basvuru_durumu = ? AND aktif = 1", durum).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count applications by status", err, map[string]interface{}{
			"basvuru_durumu": durum,
		})
		return 0, err
	}
	return count, nil
}

// CountByMonth counts active applications whose application date falls in the
// given calendar month. A half-open range keeps the predicate portable across
// postgres and the sqlite test database.
func (r *permitRepository) CountByMonth(ctx context.Context, year int, month time.Month) (int64, error) {
	monthStart := model.NewDate(year, month, 1)
	nextMonth := model.DateOnly{Time: monthStart.Time.AddDate(0, 1, 0)}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PermitApplication{}).
		Where("basvuru_tarihi >= ? AND basvuru_tarihi < ? AND aktif = 1", monthStart, nextMonth).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count applications by month", err, map[string]interface{}{
			"year":  year,
			"month": int(month),
		})
		return 0, err
	}
	return count, nil
}

func (r *permitRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (int64, error) {
	logger.Debug("Updating permit application fields in database", map[string]interface{}{
		"id":     id,
		"fields": len(updates),
	})

	res := r.db.WithContext(ctx).
		Model(&model.PermitApplication{}).
		Where("id = ? AND aktif = 1", id).
		Updates(updates)
	if res.Error != nil {
		logger.Error("Failed to update permit application fields", res.Error, map[string]interface{}{
			"id": id,
		})
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
