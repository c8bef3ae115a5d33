package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPermitTest(t *testing.T) (*gorm.DB, PermitRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewPermitRepository(testDB)
	return testDB, repo
}

func testApplication(basvuruNo string) *model.PermitApplication {
	return &model.PermitApplication{
		BasvuruNo:           basvuruNo,
		BasvuruTarihi:       model.NewDate(2026, time.March, 10),
		BasvuruTuru:         model.TypeYapiRuhsati,
		BasvuruDurumu:       model.StatusBeklemede,
		BasvuruSahibiAdi:    "Mehmet",
		BasvuruSahibiSoyadi: "Yılmaz",
		BasvuruSahibiTcno:   "12345678901",
		ArsaAdresi:          "Körfez Mah. Sanayi Cad. No:12",
		Aktif:               1,
	}
}

func TestPermitRepository_Create(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	app := testApplication("IR202603100001")
	err := repo.Create(context.Background(), app)
	assert.NoError(t, err)
	assert.NotZero(t, app.ID)
}

func TestPermitRepository_Create_DuplicateNumber(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, testApplication("IR202603100001")))

	err := repo.Create(ctx, testApplication("IR202603100001"))
	assert.Error(t, err)
}

func TestPermitRepository_FindActiveByID(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()
	app := testApplication("IR202603100001")
	require.NoError(t, repo.Create(ctx, app))

	found, err := repo.FindActiveByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.BasvuruNo, found.BasvuruNo)

	// Deactivated records look deleted to the active lookup
	rows, err := repo.UpdateFields(ctx, app.ID, map[string]interface{}{"aktif": 0})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = repo.FindActiveByID(ctx, app.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPermitRepository_FindByBasvuruNo(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()
	app := testApplication("IR202603100007")
	require.NoError(t, repo.Create(ctx, app))

	found, err := repo.FindByBasvuruNo(ctx, "IR202603100007")
	require.NoError(t, err)
	assert.Equal(t, app.ID, found.ID)

	_, err = repo.FindByBasvuruNo(ctx, "IR209901010001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPermitRepository_Search(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	app1 := testApplication("IR202603100001")
	app1.BasvuruSahibiAdi = "Ayşe"
	app1.BasvuruSahibiSoyadi = "Demir"
	require.NoError(t, repo.Create(ctx, app1))

	app2 := testApplication("IR202603100002")
	app2.ArsaAdresi = "Gölcük Mah. Liman Sok. No:3"
	require.NoError(t, repo.Create(ctx, app2))

	tests := []struct {
		name    string
		keyword string
		want    int
	}{
		{name: "By surname", keyword: "demir", want: 1},
		{name: "By address", keyword: "gölcük", want: 1},
		{name: "By application number prefix", keyword: "IR2026", want: 2},
		{name: "No match", keyword: "istanbul", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.Search(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
		})
	}
}

func TestPermitRepository_Search_ExcludesInactive(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()
	app := testApplication("IR202603100001")
	app.BasvuruSahibiSoyadi = "Demir"
	require.NoError(t, repo.Create(ctx, app))

	_, err := repo.UpdateFields(ctx, app.ID, map[string]interface{}{"aktif": 0})
	require.NoError(t, err)

	found, err := repo.Search(ctx, "demir")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestPermitRepository_FindPending_Order(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	newer := testApplication("IR202603150001")
	newer.BasvuruTarihi = model.NewDate(2026, time.March, 15)
	require.NoError(t, repo.Create(ctx, newer))

	older := testApplication("IR202603010001")
	older.BasvuruTarihi = model.NewDate(2026, time.March, 1)
	require.NoError(t, repo.Create(ctx, older))

	reviewing := testApplication("IR202603020001")
	reviewing.BasvuruDurumu = model.StatusInceleniyor
	require.NoError(t, repo.Create(ctx, reviewing))

	pending, err := repo.FindPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Oldest application first so it gets reviewed first
	assert.Equal(t, "IR202603010001", pending[0].BasvuruNo)
	assert.Equal(t, "IR202603150001", pending[1].BasvuruNo)
}

func TestPermitRepository_FindByBasvuruTarihi(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	inside := testApplication("IR202603100001")
	inside.BasvuruTarihi = model.NewDate(2026, time.March, 10)
	require.NoError(t, repo.Create(ctx, inside))

	outside := testApplication("IR202604050001")
	outside.BasvuruTarihi = model.NewDate(2026, time.April, 5)
	require.NoError(t, repo.Create(ctx, outside))

	found, err := repo.FindByBasvuruTarihi(ctx,
		model.NewDate(2026, time.March, 1),
		model.NewDate(2026, time.March, 31),
	)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "IR202603100001", found[0].BasvuruNo)
}

func TestPermitRepository_FindExpiring(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	soon := testApplication("IR202603100001")
	soonDate := model.Today().AddDays(10)
	soon.RuhsatGecerlilikTarihi = &soonDate
	require.NoError(t, repo.Create(ctx, soon))

	later := testApplication("IR202603100002")
	laterDate := model.Today().AddDays(200)
	later.RuhsatGecerlilikTarihi = &laterDate
	require.NoError(t, repo.Create(ctx, later))

	noPermit := testApplication("IR202603100003")
	require.NoError(t, repo.Create(ctx, noPermit))

	found, err := repo.FindExpiring(ctx, model.Today().AddDays(30))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "IR202603100001", found[0].BasvuruNo)
}

func TestPermitRepository_CountByMonth(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	for i, day := range []int{1, 15, 31} {
		app := testApplication("IR20260300000" + string(rune('1'+i)))
		app.BasvuruTarihi = model.NewDate(2026, time.March, day)
		require.NoError(t, repo.Create(ctx, app))
	}

	april := testApplication("IR202604010001")
	april.BasvuruTarihi = model.NewDate(2026, time.April, 1)
	require.NoError(t, repo.Create(ctx, april))

	count, err := repo.CountByMonth(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = repo.CountByMonth(ctx, 2026, time.April)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.CountByMonth(ctx, 2026, time.May)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestPermitRepository_CountByDurumu(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		app := testApplication("IR20260310000" + string(rune('1'+i)))
		require.NoError(t, repo.Create(ctx, app))
	}
	approved := testApplication("IR202603100009")
	approved.BasvuruDurumu = model.StatusOnaylandi
	require.NoError(t, repo.Create(ctx, approved))

	count, err := repo.CountByDurumu(ctx, model.StatusBeklemede)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.CountByDurumu(ctx, model.StatusOnaylandi)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestPermitRepository_UpdateFields_Guarded(t *testing.T) {
	testDB, repo := setupPermitTest(t)
	defer db.CleanupTestDB(testDB)

	ctx := context.Background()
	app := testApplication("IR202603100001")
	require.NoError(t, repo.Create(ctx, app))

	rows, err := repo.UpdateFields(ctx, app.ID, map[string]interface{}{
		"notlar": "ek evrak istendi",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	// Unknown id touches nothing
	rows, err = repo.UpdateFields(ctx, 9999, map[string]interface{}{
		"notlar": "x",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	// Neither does an inactive record
	_, err = repo.UpdateFields(ctx, app.ID, map[string]interface{}{"aktif": 0})
	require.NoError(t, err)
	rows, err = repo.UpdateFields(ctx, app.ID, map[string]interface{}{
		"notlar": "y",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
}
