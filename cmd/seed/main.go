package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kocaeli-bel/imar-backend/config"
	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Beklenen sütun sırası (başlık satırı hariç):
// 0  Başvuru No        5  Soyadı           10 Parsel No
// 1  Başvuru Tarihi    6  TC Kimlik No     11 Pafta No
// 2  Başvuru Türü      7  Telefon          12 Arsa Alanı
// 3  Başvuru Durumu    8  E-posta          13 Yapı Alanı
// 4  Adı               9  Arsa Adresi      14 Yapı Türü
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	permitRepo := repository.NewPermitRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	apps, err := readApplicationsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total applications to import: %d\n", len(apps))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := permitRepo.BulkCreate(context.Background(), apps, batchSize); err != nil {
		log.Fatal("Failed to bulk create applications:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total applications imported: %d\n", len(apps))
}

func readApplicationsFromXLSX(filePath string) ([]model.PermitApplication, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var apps []model.PermitApplication
	seenNumbers := make(map[string]bool) // başvuru no tekrarı ayıklama
	skippedCount := 0
	invalidDateCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 10 {
			skippedCount++
			continue
		}

		basvuruNo := strings.TrimSpace(row[0])
		tarihStr := strings.TrimSpace(row[1])
		tur := model.ApplicationType(strings.TrimSpace(row[2]))
		durum := model.ApplicationStatus(strings.TrimSpace(row[3]))
		adi := strings.TrimSpace(row[4])
		soyadi := strings.TrimSpace(row[5])
		tcno := strings.TrimSpace(row[6])
		telefon := strings.TrimSpace(row[7])
		email := strings.TrimSpace(row[8])
		adres := strings.TrimSpace(row[9])

		if basvuruNo == "" || adi == "" || soyadi == "" || tcno == "" || adres == "" {
			skippedCount++
			continue
		}

		if !tur.Valid() {
			skippedCount++
			continue
		}
		if durum == "" {
			durum = model.StatusBeklemede
		} else if !durum.Valid() {
			skippedCount++
			continue
		}

		tarih, err := model.ParseDate(tarihStr)
		if err != nil {
			invalidDateCount++
			skippedCount++
			continue
		}

		if seenNumbers[basvuruNo] {
			skippedCount++
			continue
		}
		seenNumbers[basvuruNo] = true

		app := model.PermitApplication{
			BasvuruNo:            basvuruNo,
			BasvuruTarihi:        tarih,
			BasvuruTuru:          tur,
			BasvuruDurumu:        durum,
			BasvuruSahibiAdi:     adi,
			BasvuruSahibiSoyadi:  soyadi,
			BasvuruSahibiTcno:    tcno,
			BasvuruSahibiTelefon: telefon,
			BasvuruSahibiEmail:   email,
			ArsaAdresi:           adres,
			Aktif:                1,
			OlusturanKullanici:   "seed",
		}

		// İsteğe bağlı sütunlar
		if len(row) > 10 {
			app.ArsaParselNo = strings.TrimSpace(row[10])
		}
		if len(row) > 11 {
			app.ArsaPaftaNo = strings.TrimSpace(row[11])
		}
		if len(row) > 12 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[12]), 64); err == nil && v > 0 {
				app.ArsaAlani = &v
			}
		}
		if len(row) > 13 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[13]), 64); err == nil && v > 0 {
				app.YapiAlani = &v
			}
		}
		if len(row) > 14 {
			if yt := model.BuildingType(strings.TrimSpace(row[14])); yt.Valid() {
				app.YapiTuru = yt
			}
		}

		apps = append(apps, app)

		if len(apps)%500 == 0 {
			fmt.Printf("Processed %d applications...\n", len(apps))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid applications: %d\n", len(apps))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Rows with invalid dates: %d\n", invalidDateCount)

	return apps, nil
}
