package service

import (
	"context"
	"errors"
	"time"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	apperrors "github.com/kocaeli-bel/imar-backend/internal/errors"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("permit application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrInvalidType         = errors.New("invalid application type")
	ErrInvalidBuildingType = errors.New("invalid building type")
	ErrDuplicateBasvuruNo  = errors.New("application number already in use")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

// DateRangeField selects which date column a range query filters on.
type DateRangeField string

const (
	RangeBasvuruTarihi DateRangeField = "basvuru"
	RangeRuhsatTarihi  DateRangeField = "ruhsat"
)

// UpdatePermitInput carries a partial update. Only non-nil fields are
// written; everything else keeps its stored value.
type UpdatePermitInput struct {
	BasvuruTuru          *model.ApplicationType
	BasvuruSahibiAdi     *string
	BasvuruSahibiSoyadi  *string
	BasvuruSahibiTcno    *string
	BasvuruSahibiTelefon *string
	BasvuruSahibiEmail   *string
	ArsaAdresi           *string
	ArsaParselNo         *string
	ArsaAdaNo            *string
	ArsaPaftaNo          *string
	ArsaAlani            *float64
	YapiAlani            *float64
	KatSayisi            *int
	DaireSayisi          *int
	YapiTuru             *model.BuildingType
	YapiKullanimAmaci    *string
	ProjeMimari          *string
	ProjeMuhendisi       *string
	ProjeTarihi          *model.DateOnly
	OnayMakami           *string
	RedSebebi            *string
	Notlar               *string
	DosyaYolu            *string
	GuncelleyenKullanici *string
}

// PermitService owns the application lifecycle: intake defaults, partial
// updates, the status machine with its approval side effects, soft deletion,
// and every read/aggregate the transport layer exposes.
type PermitService interface {
	GetAll(ctx context.Context) ([]model.PermitApplication, error)
	GetByID(ctx context.Context, id uint) (*model.PermitApplication, error)
	GetByBasvuruNo(ctx context.Context, basvuruNo string) (*model.PermitApplication, error)
	Create(ctx context.Context, app *model.PermitApplication) (*model.PermitApplication, error)
	Update(ctx context.Context, id uint, input UpdatePermitInput) (*model.PermitApplication, error)
	UpdateStatus(ctx context.Context, id uint, newStatus model.ApplicationStatus, notes string) (*model.PermitApplication, error)
	Delete(ctx context.Context, id uint) (bool, error)

	GetByTuru(ctx context.Context, tur model.ApplicationType) ([]model.PermitApplication, error)
	GetByDurumu(ctx context.Context, durum model.ApplicationStatus) ([]model.PermitApplication, error)
	GetByTcno(ctx context.Context, tcno string) ([]model.PermitApplication, error)
	GetByDateRange(ctx context.Context, field DateRangeField, start, end model.DateOnly) ([]model.PermitApplication, error)
	Search(ctx context.Context, keyword string) ([]model.PermitApplication, error)
	GetPending(ctx context.Context) ([]model.PermitApplication, error)
	GetApproved(ctx context.Context) ([]model.PermitApplication, error)
	GetExpiringWithin(ctx context.Context, days int) ([]model.PermitApplication, error)

	CountByTuru(ctx context.Context, tur model.ApplicationType) (int64, error)
	CountByDurumu(ctx context.Context, durum model.ApplicationStatus) (int64, error)
	CountByMonth(ctx context.Context, year int, month time.Month) (int64, error)
}

type permitService struct {
	permitRepo repository.PermitRepository
	numbering  NumberingService
}

func NewPermitService(permitRepo repository.PermitRepository, numbering NumberingService) PermitService {
	return &permitService{
		permitRepo: permitRepo,
		numbering:  numbering,
	}
}

func (s *permitService) GetAll(ctx context.Context) ([]model.PermitApplication, error) {
	return s.permitRepo.FindAllActive(ctx)
}

func (s *permitService) GetByID(ctx context.Context, id uint) (*model.PermitApplication, error) {
	app, err := s.permitRepo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *permitService) GetByBasvuruNo(ctx context.Context, basvuruNo string) (*model.PermitApplication, error) {
	app, err := s.permitRepo.FindByBasvuruNo(ctx, basvuruNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// Create registers a new application. Missing intake fields get their
// defaults: a generated application number, today's application date, and
// BEKLEMEDE status.
func (s *permitService) Create(ctx context.Context, app *model.PermitApplication) (*model.PermitApplication, error) {
	logger.Info("Creating permit application", map[string]interface{}{
		"basvuru_turu": app.BasvuruTuru,
		"basvuru_no":   app.BasvuruNo,
	})

	if !app.BasvuruTuru.Valid() {
		return nil, ErrInvalidType
	}
	if app.YapiTuru != "" && !app.YapiTuru.Valid() {
		return nil, ErrInvalidBuildingType
	}
	if app.BasvuruDurumu == "" {
		app.BasvuruDurumu = model.StatusBeklemede
	} else if !app.BasvuruDurumu.Valid() {
		return nil, ErrInvalidStatus
	}

	if app.BasvuruNo == "" {
		no, err := s.numbering.NextBasvuruNo(ctx)
		if err != nil {
			return nil, err
		}
		app.BasvuruNo = no
	}
	if app.BasvuruTarihi.Time.IsZero() {
		app.BasvuruTarihi = model.Today()
	}
	app.Aktif = 1

	if err := s.permitRepo.Create(ctx, app); err != nil {
		// A caller-supplied number can collide; generated numbers come from
		// reserved sequences and cannot.
		if apperrors.IsUniqueViolation(err) {
			logger.Warn("Duplicate application number rejected", map[string]interface{}{
				"basvuru_no": app.BasvuruNo,
			})
			return nil, ErrDuplicateBasvuruNo
		}
		return nil, err
	}

	logger.Info("Permit application created", map[string]interface{}{
		"id":         app.ID,
		"basvuru_no": app.BasvuruNo,
	})
	return app, nil
}

// Update applies a partial update to an active application. Each supplied
// field is merged explicitly; the update timestamp is always refreshed.
func (s *permitService) Update(ctx context.Context, id uint, input UpdatePermitInput) (*model.PermitApplication, error) {
	if input.BasvuruTuru != nil && !input.BasvuruTuru.Valid() {
		return nil, ErrInvalidType
	}
	if input.YapiTuru != nil && !input.YapiTuru.Valid() {
		return nil, ErrInvalidBuildingType
	}

	updates := map[string]interface{}{
		"guncelleme_tarihi": time.Now(),
	}
	if input.BasvuruTuru != nil {
		updates["basvuru_turu"] = *input.BasvuruTuru
	}
	if input.BasvuruSahibiAdi != nil {
		updates["basvuru_sahibi_adi"] = *input.BasvuruSahibiAdi
	}
	if input.BasvuruSahibiSoyadi != nil {
		updates["basvuru_sahibi_soyadi"] = *input.BasvuruSahibiSoyadi
	}
	if input.BasvuruSahibiTcno != nil {
		updates["basvuru_sahibi_tcno"] = *input.BasvuruSahibiTcno
	}
	if input.BasvuruSahibiTelefon != nil {
		updates["basvuru_sahibi_telefon"] = *input.BasvuruSahibiTelefon
	}
	if input.BasvuruSahibiEmail != nil {
		updates["basvuru_sahibi_email"] = *input.BasvuruSahibiEmail
	}
	if input.ArsaAdresi != nil {
		updates["arsa_adresi"] = *input.ArsaAdresi
	}
	if input.ArsaParselNo != nil {
		updates["arsa_parsel_no"] = *input.ArsaParselNo
	}
	if input.ArsaAdaNo != nil {
		updates["arsa_ada_no"] = *input.ArsaAdaNo
	}
	if input.ArsaPaftaNo != nil {
		updates["arsa_pafta_no"] = *input.ArsaPaftaNo
	}
	if input.ArsaAlani != nil {
		updates["arsa_alani"] = *input.ArsaAlani
	}
	if input.YapiAlani != nil {
		updates["yapi_alani"] = *input.YapiAlani
	}
	if input.KatSayisi != nil {
		updates["kat_sayisi"] = *input.KatSayisi
	}
	if input.DaireSayisi != nil {
		updates["daire_sayisi"] = *input.DaireSayisi
	}
	if input.YapiTuru != nil {
		updates["yapi_turu"] = *input.YapiTuru
	}
	if input.YapiKullanimAmaci != nil {
		updates["yapi_kullanim_amaci"] = *input.YapiKullanimAmaci
	}
	if input.ProjeMimari != nil {
		updates["proje_mimari"] = *input.ProjeMimari
	}
	if input.ProjeMuhendisi != nil {
		updates["proje_muhendisi"] = *input.ProjeMuhendisi
	}
	if input.ProjeTarihi != nil {
		updates["proje_tarihi"] = *input.ProjeTarihi
	}
	if input.OnayMakami != nil {
		updates["onay_makami"] = *input.OnayMakami
	}
	if input.RedSebebi != nil {
		updates["red_sebebi"] = *input.RedSebebi
	}
	if input.Notlar != nil {
		updates["notlar"] = *input.Notlar
	}
	if input.DosyaYolu != nil {
		updates["dosya_yolu"] = *input.DosyaYolu
	}
	if input.GuncelleyenKullanici != nil {
		updates["guncelleyen_kullanici"] = *input.GuncelleyenKullanici
	}

	rows, err := s.permitRepo.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		logger.Warn("Update rejected: application missing or inactive", map[string]interface{}{
			"id": id,
		})
		return nil, ErrApplicationNotFound
	}

	logger.Info("Permit application updated", map[string]interface{}{
		"id":     id,
		"fields": len(updates),
	})
	return s.GetByID(ctx, id)
}

// UpdateStatus moves an application to a new status. Any status may follow
// any other; staff correct mistakes by transitioning back. Approving sets the
// approval date, issues a permit number (once), and stamps the permit with
// a two-year validity window. Re-approving refreshes the dates but never
// regenerates the permit number.
func (s *permitService) UpdateStatus(ctx context.Context, id uint, newStatus model.ApplicationStatus, notes string) (*model.PermitApplication, error) {
	logger.Info("Updating application status", map[string]interface{}{
		"id":         id,
		"new_status": newStatus,
	})

	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.permitRepo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"basvuru_durumu":    newStatus,
		"notlar":            notes,
		"guncelleme_tarihi": time.Now(),
	}

	if newStatus == model.StatusOnaylandi {
		today := model.Today()
		updates["onay_tarihi"] = today
		updates["ruhsat_tarihi"] = today
		updates["ruhsat_gecerlilik_tarihi"] = today.AddYears(2)

		if current.RuhsatNo == "" {
			ruhsatNo, err := s.numbering.NextRuhsatNo(ctx)
			if err != nil {
				return nil, err
			}
			// Guarded in SQL so a concurrent approval that already assigned a
			// number wins; the generated candidate is then discarded.
			updates["ruhsat_no"] = gorm.Expr("COALESCE(NULLIF(ruhsat_no, ''), ?)", ruhsatNo)
		}
	}

	rows, err := s.permitRepo.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrApplicationNotFound
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("Application status updated", map[string]interface{}{
		"id":        id,
		"status":    updated.BasvuruDurumu,
		"ruhsat_no": updated.RuhsatNo,
	})
	return updated, nil
}

// Delete deactivates an application (soft delete). The record stays in the
// store but disappears from every list, search and statistic. Returns false
// without error when the id is unknown or already inactive.
func (s *permitService) Delete(ctx context.Context, id uint) (bool, error) {
	rows, err := s.permitRepo.UpdateFields(ctx, id, map[string]interface{}{
		"aktif":             0,
		"guncelleme_tarihi": time.Now(),
	})
	if err != nil {
		return false, err
	}
	if rows == 0 {
		logger.Warn("Delete skipped: no active application with id", map[string]interface{}{
			"id": id,
		})
		return false, nil
	}

	logger.Info("Permit application deactivated", map[string]interface{}{
		"id": id,
	})
	return true, nil
}

func (s *permitService) GetByTuru(ctx context.Context, tur model.ApplicationType) ([]model.PermitApplication, error) {
	if !tur.Valid() {
		return nil, ErrInvalidType
	}
	return s.permitRepo.FindByTuru(ctx, tur)
}

func (s *permitService) GetByDurumu(ctx context.Context, durum model.ApplicationStatus) ([]model.PermitApplication, error) {
	if !durum.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.permitRepo.FindByDurumu(ctx, durum)
}

func (s *permitService) GetByTcno(ctx context.Context, tcno string) ([]model.PermitApplication, error) {
	return s.permitRepo.FindByTcno(ctx, tcno)
}

func (s *permitService) GetByDateRange(ctx context.Context, field DateRangeField, start, end model.DateOnly) ([]model.PermitApplication, error) {
	if end.Time.Before(start.Time) {
		return nil, ErrInvalidDateRange
	}
	if field == RangeRuhsatTarihi {
		return s.permitRepo.FindByRuhsatTarihi(ctx, start, end)
	}
	return s.permitRepo.FindByBasvuruTarihi(ctx, start, end)
}

func (s *permitService) Search(ctx context.Context, keyword string) ([]model.PermitApplication, error) {
	return s.permitRepo.Search(ctx, keyword)
}

func (s *permitService) GetPending(ctx context.Context) ([]model.PermitApplication, error) {
	return s.permitRepo.FindPending(ctx)
}

func (s *permitService) GetApproved(ctx context.Context) ([]model.PermitApplication, error) {
	return s.permitRepo.FindApproved(ctx)
}

func (s *permitService) GetExpiringWithin(ctx context.Context, days int) ([]model.PermitApplication, error) {
	until := model.Today().AddDays(days)
	return s.permitRepo.FindExpiring(ctx, until)
}

func (s *permitService) CountByTuru(ctx context.Context, tur model.ApplicationType) (int64, error) {
	if !tur.Valid() {
		return 0, ErrInvalidType
	}
	return s.permitRepo.CountByTuru(ctx, tur)
}

func (s *permitService) CountByDurumu(ctx context.Context, durum model.ApplicationStatus) (int64, error) {
	if !durum.Valid() {
		return 0, ErrInvalidStatus
	}
	return s.permitRepo.CountByDurumu(ctx, durum)
}

func (s *permitService) CountByMonth(ctx context.Context, year int, month time.Month) (int64, error) {
	return s.permitRepo.CountByMonth(ctx, year, month)
}
