package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportApplications(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	permitRepo := repository.NewPermitRepository(testDB)
	numbering := NewNumberingService(repository.NewSequenceRepository(testDB))
	permitSvc := NewPermitService(permitRepo, numbering)
	exportSvc := NewExportService(permitRepo)

	ctx := context.Background()
	created, err := permitSvc.Create(ctx, serviceApplication())
	require.NoError(t, err)

	data, err := exportSvc.ExportApplications(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Basvurular")
	require.NoError(t, err)
	require.Len(t, rows, 2) // başlık + 1 kayıt

	assert.Equal(t, "Başvuru No", rows[0][0])
	assert.Equal(t, created.BasvuruNo, rows[1][0])
	assert.Equal(t, string(model.TypeYapiRuhsati), rows[1][2])
}

func TestExportService_ExportApplications_Empty(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	exportSvc := NewExportService(repository.NewPermitRepository(testDB))

	data, err := exportSvc.ExportApplications(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Basvurular")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
