package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/service"
	apperrors "github.com/kocaeli-bel/imar-backend/internal/errors"
	"github.com/kocaeli-bel/imar-backend/internal/middleware"
)

type PermitController struct {
	permitService    service.PermitService
	dashboardService service.DashboardService
	exportService    service.ExportService
	storeTimeout     time.Duration
}

func NewPermitController(
	permitService service.PermitService,
	dashboardService service.DashboardService,
	exportService service.ExportService,
	storeTimeout time.Duration,
) *PermitController {
	return &PermitController{
		permitService:    permitService,
		dashboardService: dashboardService,
		exportService:    exportService,
		storeTimeout:     storeTimeout,
	}
}

// CreatePermitRequest: alan adları ön yüz sözleşmesiyle birebir
type CreatePermitRequest struct {
	BasvuruNo            string                  `json:"basvuruNo"`
	BasvuruTarihi        *model.DateOnly         `json:"basvuruTarihi"`
	BasvuruTuru          model.ApplicationType   `json:"basvuruTuru" binding:"required"`
	BasvuruDurumu        model.ApplicationStatus `json:"basvuruDurumu"`
	BasvuruSahibiAdi     string                  `json:"basvuruSahibiAdi" binding:"required"`
	BasvuruSahibiSoyadi  string                  `json:"basvuruSahibiSoyadi" binding:"required"`
	BasvuruSahibiTcno    string                  `json:"basvuruSahibiTcno" binding:"required,len=11"`
	BasvuruSahibiTelefon string                  `json:"basvuruSahibiTelefon"`
	BasvuruSahibiEmail   string                  `json:"basvuruSahibiEmail"`
	ArsaAdresi           string                  `json:"arsaAdresi" binding:"required"`
	ArsaParselNo         string                  `json:"arsaParselNo"`
	ArsaAdaNo            string                  `json:"arsaAdaNo"`
	ArsaPaftaNo          string                  `json:"arsaPaftaNo"`
	ArsaAlani            *float64                `json:"arsaAlani"`
	YapiAlani            *float64                `json:"yapiAlani"`
	KatSayisi            *int                    `json:"katSayisi"`
	DaireSayisi          *int                    `json:"daireSayisi"`
	YapiTuru             model.BuildingType      `json:"yapiTuru"`
	YapiKullanimAmaci    string                  `json:"yapiKullanimAmaci"`
	ProjeMimari          string                  `json:"projeMimari"`
	ProjeMuhendisi       string                  `json:"projeMuhendisi"`
	ProjeTarihi          *model.DateOnly         `json:"projeTarihi"`
	Notlar               string                  `json:"notlar"`
	DosyaYolu            string                  `json:"dosyaYolu"`
	OlusturanKullanici   string                  `json:"olusturanKullanici"`
}

type UpdatePermitRequest struct {
	BasvuruTuru          *model.ApplicationType `json:"basvuruTuru"`
	BasvuruSahibiAdi     *string                `json:"basvuruSahibiAdi"`
	BasvuruSahibiSoyadi  *string                `json:"basvuruSahibiSoyadi"`
	BasvuruSahibiTcno    *string                `json:"basvuruSahibiTcno"`
	BasvuruSahibiTelefon *string                `json:"basvuruSahibiTelefon"`
	BasvuruSahibiEmail   *string                `json:"basvuruSahibiEmail"`
	ArsaAdresi           *string                `json:"arsaAdresi"`
	ArsaParselNo         *string                `json:"arsaParselNo"`
	ArsaAdaNo            *string                `json:"arsaAdaNo"`
	ArsaPaftaNo          *string                `json:"arsaPaftaNo"`
	ArsaAlani            *float64               `json:"arsaAlani"`
	YapiAlani            *float64               `json:"yapiAlani"`
	KatSayisi            *int                   `json:"katSayisi"`
	DaireSayisi          *int                   `json:"daireSayisi"`
	YapiTuru             *model.BuildingType    `json:"yapiTuru"`
	YapiKullanimAmaci    *string                `json:"yapiKullanimAmaci"`
	ProjeMimari          *string                `json:"projeMimari"`
	ProjeMuhendisi       *string                `json:"projeMuhendisi"`
	ProjeTarihi          *model.DateOnly        `json:"projeTarihi"`
	OnayMakami           *string                `json:"onayMakami"`
	RedSebebi            *string                `json:"redSebebi"`
	Notlar               *string                `json:"notlar"`
	DosyaYolu            *string                `json:"dosyaYolu"`
	GuncelleyenKullanici *string                `json:"guncelleyenKullanici"`
}

type UpdateStatusRequest struct {
	BasvuruDurumu model.ApplicationStatus `json:"basvuruDurumu" binding:"required"`
	Notlar        string                  `json:"notlar"`
}

// List godoc: aktif başvuruları oluşturma tarihine göre yeni → eski döner
func (ctrl *PermitController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	apps, err := ctrl.permitService.GetAll(ctx)
	if err != nil {
		log.Error("Failed to list applications", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvurular": apps,
		"count":      len(apps),
	})
}

func (ctrl *PermitController) GetByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	app, err := ctrl.permitService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			log.Warn("Application not found", map[string]interface{}{
				"id": id,
			})
			apperrors.NotFound(c, apperrors.ImarBasvuruNotFound, "Başvuru bulunamadı")
			return
		}
		log.Error("Failed to fetch application", err, map[string]interface{}{
			"id": id,
		})
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (ctrl *PermitController) GetByBasvuruNo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	basvuruNo := c.Param("basvuruNo")

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	app, err := ctrl.permitService.GetByBasvuruNo(ctx, basvuruNo)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			apperrors.NotFound(c, apperrors.ImarBasvuruNotFound, "Başvuru bulunamadı")
			return
		}
		log.Error("Failed to fetch application by number", err, map[string]interface{}{
			"basvuru_no": basvuruNo,
		})
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (ctrl *PermitController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreatePermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid application payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz başvuru verisi: "+err.Error())
		return
	}

	app := &model.PermitApplication{
		BasvuruNo:            req.BasvuruNo,
		BasvuruTuru:          req.BasvuruTuru,
		BasvuruDurumu:        req.BasvuruDurumu,
		BasvuruSahibiAdi:     req.BasvuruSahibiAdi,
		BasvuruSahibiSoyadi:  req.BasvuruSahibiSoyadi,
		BasvuruSahibiTcno:    req.BasvuruSahibiTcno,
		BasvuruSahibiTelefon: req.BasvuruSahibiTelefon,
		BasvuruSahibiEmail:   req.BasvuruSahibiEmail,
		ArsaAdresi:           req.ArsaAdresi,
		ArsaParselNo:         req.ArsaParselNo,
		ArsaAdaNo:            req.ArsaAdaNo,
		ArsaPaftaNo:          req.ArsaPaftaNo,
		ArsaAlani:            req.ArsaAlani,
		YapiAlani:            req.YapiAlani,
		KatSayisi:            req.KatSayisi,
		DaireSayisi:          req.DaireSayisi,
		YapiTuru:             req.YapiTuru,
		YapiKullanimAmaci:    req.YapiKullanimAmaci,
		ProjeMimari:          req.ProjeMimari,
		ProjeMuhendisi:       req.ProjeMuhendisi,
		ProjeTarihi:          req.ProjeTarihi,
		Notlar:               req.Notlar,
		DosyaYolu:            req.DosyaYolu,
		OlusturanKullanici:   req.OlusturanKullanici,
	}
	if req.BasvuruTarihi != nil {
		app.BasvuruTarihi = *req.BasvuruTarihi
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	created, err := ctrl.permitService.Create(ctx, app)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz başvuru türü")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidStatus, "Geçersiz başvuru durumu")
		case errors.Is(err, service.ErrInvalidBuildingType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz yapı türü")
		case errors.Is(err, service.ErrDuplicateBasvuruNo):
			apperrors.Conflict(c, apperrors.ImarBasvuruNoExists, "Başvuru numarası zaten kullanımda")
		default:
			log.Error("Failed to create application", err, nil)
			respondStoreError(c, err)
		}
		return
	}

	ctrl.dashboardService.InvalidateCache(c.Request.Context())

	log.Info("Application created", map[string]interface{}{
		"id":         created.ID,
		"basvuru_no": created.BasvuruNo,
	})

	c.JSON(http.StatusCreated, created)
}

func (ctrl *PermitController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	var req UpdatePermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz başvuru verisi: "+err.Error())
		return
	}

	input := service.UpdatePermitInput{
		BasvuruTuru:          req.BasvuruTuru,
		BasvuruSahibiAdi:     req.BasvuruSahibiAdi,
		BasvuruSahibiSoyadi:  req.BasvuruSahibiSoyadi,
		BasvuruSahibiTcno:    req.BasvuruSahibiTcno,
		BasvuruSahibiTelefon: req.BasvuruSahibiTelefon,
		BasvuruSahibiEmail:   req.BasvuruSahibiEmail,
		ArsaAdresi:           req.ArsaAdresi,
		ArsaParselNo:         req.ArsaParselNo,
		ArsaAdaNo:            req.ArsaAdaNo,
		ArsaPaftaNo:          req.ArsaPaftaNo,
		ArsaAlani:            req.ArsaAlani,
		YapiAlani:            req.YapiAlani,
		KatSayisi:            req.KatSayisi,
		DaireSayisi:          req.DaireSayisi,
		YapiTuru:             req.YapiTuru,
		YapiKullanimAmaci:    req.YapiKullanimAmaci,
		ProjeMimari:          req.ProjeMimari,
		ProjeMuhendisi:       req.ProjeMuhendisi,
		ProjeTarihi:          req.ProjeTarihi,
		OnayMakami:           req.OnayMakami,
		RedSebebi:            req.RedSebebi,
		Notlar:               req.Notlar,
		DosyaYolu:            req.DosyaYolu,
		GuncelleyenKullanici: req.GuncelleyenKullanici,
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	updated, err := ctrl.permitService.Update(ctx, id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			apperrors.NotFound(c, apperrors.ImarBasvuruNotFound, "Başvuru bulunamadı")
		case errors.Is(err, service.ErrInvalidType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz başvuru türü")
		case errors.Is(err, service.ErrInvalidBuildingType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz yapı türü")
		default:
			log.Error("Failed to update application", err, map[string]interface{}{
				"id": id,
			})
			respondStoreError(c, err)
		}
		return
	}

	ctrl.dashboardService.InvalidateCache(c.Request.Context())

	c.JSON(http.StatusOK, updated)
}

func (ctrl *PermitController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz durum verisi: "+err.Error())
		return
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	updated, err := ctrl.permitService.UpdateStatus(ctx, id, req.BasvuruDurumu, req.Notlar)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			apperrors.NotFound(c, apperrors.ImarBasvuruNotFound, "Başvuru bulunamadı")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidStatus, "Geçersiz başvuru durumu")
		default:
			log.Error("Failed to update application status", err, map[string]interface{}{
				"id":     id,
				"status": req.BasvuruDurumu,
			})
			respondStoreError(c, err)
		}
		return
	}

	ctrl.dashboardService.InvalidateCache(c.Request.Context())

	log.Info("Application status changed", map[string]interface{}{
		"id":     id,
		"status": updated.BasvuruDurumu,
	})

	c.JSON(http.StatusOK, updated)
}

func (ctrl *PermitController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	deleted, err := ctrl.permitService.Delete(ctx, id)
	if err != nil {
		log.Error("Failed to delete application", err, map[string]interface{}{
			"id": id,
		})
		respondStoreError(c, err)
		return
	}

	if deleted {
		ctrl.dashboardService.InvalidateCache(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
	})
}

func (ctrl *PermitController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	keyword := c.Query("keyword")

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	apps, err := ctrl.permitService.Search(ctx, keyword)
	if err != nil {
		log.Error("Search failed", err, map[string]interface{}{
			"keyword": keyword,
		})
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvurular": apps,
		"count":      len(apps),
	})
}

func (ctrl *PermitController) GetByDateRange(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	start, err := model.ParseDate(c.Query("startDate"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "Geçersiz başlangıç tarihi (yyyy-MM-dd bekleniyor)")
		return
	}
	end, err := model.ParseDate(c.Query("endDate"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "Geçersiz bitiş tarihi (yyyy-MM-dd bekleniyor)")
		return
	}

	field := service.RangeBasvuruTarihi
	if c.Query("alan") == string(service.RangeRuhsatTarihi) {
		field = service.RangeRuhsatTarihi
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	apps, err := ctrl.permitService.GetByDateRange(ctx, field, start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "Bitiş tarihi başlangıç tarihinden önce olamaz")
			return
		}
		log.Error("Date range query failed", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvurular": apps,
		"count":      len(apps),
	})
}

func (ctrl *PermitController) GetByTuru(c *gin.Context) {
	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetByTuru(ctx, model.ApplicationType(c.Param("tur")))
	})
}

func (ctrl *PermitController) GetByDurumu(c *gin.Context) {
	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetByDurumu(ctx, model.ApplicationStatus(c.Param("durum")))
	})
}

func (ctrl *PermitController) GetByTcno(c *gin.Context) {
	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetByTcno(ctx, c.Param("tcno"))
	})
}

func (ctrl *PermitController) GetPending(c *gin.Context) {
	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetPending(ctx)
	})
}

func (ctrl *PermitController) GetApproved(c *gin.Context) {
	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetApproved(ctx)
	})
}

func (ctrl *PermitController) GetExpiring(c *gin.Context) {
	days := 30
	if v := c.Query("gunSayisi"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz gün sayısı")
			return
		}
		days = parsed
	}

	ctrl.listBy(c, func(ctx context.Context) ([]model.PermitApplication, error) {
		return ctrl.permitService.GetExpiringWithin(ctx, days)
	})
}

func (ctrl *PermitController) CountByTuru(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	tur := model.ApplicationType(c.Param("tur"))

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	count, err := ctrl.permitService.CountByTuru(ctx, tur)
	if err != nil {
		if errors.Is(err, service.ErrInvalidType) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz başvuru türü")
			return
		}
		log.Error("Count by type failed", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvuruTuru": tur,
		"count":       count,
	})
}

func (ctrl *PermitController) CountByDurumu(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	durum := model.ApplicationStatus(c.Param("durum"))

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	count, err := ctrl.permitService.CountByDurumu(ctx, durum)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidStatus, "Geçersiz başvuru durumu")
			return
		}
		log.Error("Count by status failed", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvuruDurumu": durum,
		"count":         count,
	})
}

func (ctrl *PermitController) CountByMonth(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz yıl")
			return
		}
		year = parsed
	}
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Geçersiz ay")
			return
		}
		month = parsed
	}

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	count, err := ctrl.permitService.CountByMonth(ctx, year, time.Month(month))
	if err != nil {
		log.Error("Count by month failed", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"count": count,
	})
}

func (ctrl *PermitController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	summary, err := ctrl.dashboardService.GetSummary(ctx)
	if err != nil {
		log.Error("Dashboard aggregation failed", err, nil)
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (ctrl *PermitController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	data, err := ctrl.exportService.ExportApplications(ctx)
	if err != nil {
		log.Error("Export failed", err, nil)
		apperrors.InternalError(c, "Rapor oluşturulamadı")
		return
	}

	filename := fmt.Sprintf("imar-basvurulari-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// listBy factors the shared list-endpoint shape: run the query with a
// bounded context, map validation sentinels to 400, everything else to 500.
func (ctrl *PermitController) listBy(c *gin.Context, fn func(context.Context) ([]model.PermitApplication, error)) {
	log := middleware.GetLoggerFromContext(c)

	ctx, cancel := ctrl.storeContext(c)
	defer cancel()

	apps, err := fn(ctx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidType, "Geçersiz başvuru türü")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.ValidationInvalidStatus, "Geçersiz başvuru durumu")
		default:
			log.Error("Failed to list applications", err, nil)
			respondStoreError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"basvurular": apps,
		"count":      len(apps),
	})
}

// respondStoreError maps a persistence failure onto the error taxonomy.
func respondStoreError(c *gin.Context, err error) {
	info := apperrors.ParseError(err)
	status := http.StatusInternalServerError
	if info.Code == apperrors.ResourceNotFound {
		status = http.StatusNotFound
	}
	apperrors.RespondWithError(c, status, info.Code, info.Message)
}

// storeContext bounds store access with the configured write timeout so a
// slow database cannot hold a handler indefinitely.
func (ctrl *PermitController) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if ctrl.storeTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), ctrl.storeTimeout)
}

func (ctrl *PermitController) parseID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Geçersiz başvuru kimliği")
		return 0, false
	}
	return uint(id), true
}
