package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Basvurular"

// exportColumns: başlık sırası, müdürlüğün kullandığı rapor şablonuyla aynı
var exportColumns = []string{
	"Başvuru No",
	"Başvuru Tarihi",
	"Başvuru Türü",
	"Başvuru Durumu",
	"Adı",
	"Soyadı",
	"TC Kimlik No",
	"Telefon",
	"E-posta",
	"Arsa Adresi",
	"Ada No",
	"Parsel No",
	"Pafta No",
	"Arsa Alanı (m²)",
	"Yapı Alanı (m²)",
	"Kat Sayısı",
	"Daire Sayısı",
	"Yapı Türü",
	"Ruhsat No",
	"Ruhsat Tarihi",
	"Geçerlilik Tarihi",
	"Onay Makamı",
	"Onay Tarihi",
}

// ExportService writes active applications into an XLSX workbook for the
// municipality's reporting pipeline.
type ExportService interface {
	ExportApplications(ctx context.Context) ([]byte, error)
}

type exportService struct {
	permitRepo repository.PermitRepository
}

func NewExportService(permitRepo repository.PermitRepository) ExportService {
	return &exportService{permitRepo: permitRepo}
}

func (s *exportService) ExportApplications(ctx context.Context) ([]byte, error) {
	apps, err := s.permitRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, title := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, title); err != nil {
			return nil, err
		}
	}

	for i, app := range apps {
		row := exportRow(&app)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Application export generated", map[string]interface{}{
		"count": len(apps),
		"bytes": buf.Len(),
	})
	return buf.Bytes(), nil
}

func exportRow(app *model.PermitApplication) []interface{} {
	return []interface{}{
		app.BasvuruNo,
		app.BasvuruTarihi.String(),
		string(app.BasvuruTuru),
		string(app.BasvuruDurumu),
		app.BasvuruSahibiAdi,
		app.BasvuruSahibiSoyadi,
		app.BasvuruSahibiTcno,
		app.BasvuruSahibiTelefon,
		app.BasvuruSahibiEmail,
		app.ArsaAdresi,
		app.ArsaAdaNo,
		app.ArsaParselNo,
		app.ArsaPaftaNo,
		floatCell(app.ArsaAlani),
		floatCell(app.YapiAlani),
		intCell(app.KatSayisi),
		intCell(app.DaireSayisi),
		string(app.YapiTuru),
		app.RuhsatNo,
		dateCell(app.RuhsatTarihi),
		dateCell(app.RuhsatGecerlilikTarihi),
		app.OnayMakami,
		dateCell(app.OnayTarihi),
	}
}

func dateCell(d *model.DateOnly) string {
	if d == nil || d.Time.IsZero() {
		return ""
	}
	return d.String()
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
