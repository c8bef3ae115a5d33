package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kocaeli-bel/imar-backend/internal/app/model"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/internal/app/service"
	"github.com/kocaeli-bel/imar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPermitControllerTest(t *testing.T) (*gin.Engine, repository.PermitRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	permitRepo := repository.NewPermitRepository(testDB)
	numbering := service.NewNumberingService(repository.NewSequenceRepository(testDB))
	permitService := service.NewPermitService(permitRepo, numbering)
	dashboardService := service.NewDashboardService(permitRepo, false)
	exportService := service.NewExportService(permitRepo)

	ctrl := NewPermitController(permitService, dashboardService, exportService, 5*time.Second)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	imar := router.Group("/api/imar-ruhsat")
	{
		imar.GET("", ctrl.List)
		imar.POST("", ctrl.Create)
		imar.GET("/:id", ctrl.GetByID)
		imar.PUT("/:id", ctrl.Update)
		imar.PUT("/:id/durum", ctrl.UpdateStatus)
		imar.DELETE("/:id", ctrl.Delete)
		imar.GET("/basvuru-no/:basvuruNo", ctrl.GetByBasvuruNo)
		imar.GET("/search", ctrl.Search)
		imar.GET("/tarih-araligi", ctrl.GetByDateRange)
		imar.GET("/bekleyen", ctrl.GetPending)
		imar.GET("/suresi-dolacak", ctrl.GetExpiring)
		imar.GET("/istatistik/basvuru-durumu/:durum", ctrl.CountByDurumu)
		imar.GET("/dashboard", ctrl.Dashboard)
		imar.GET("/export", ctrl.Export)
	}

	return router, permitRepo
}

func createRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"basvuruTuru":         "YAPI_RUHSATI",
		"basvuruSahibiAdi":    "Zeynep",
		"basvuruSahibiSoyadi": "Arslan",
		"basvuruSahibiTcno":   "55566677788",
		"arsaAdresi":          "Başiskele Mah. Deniz Cad. No:9",
	}
}

func postApplication(t *testing.T, router *gin.Engine, body map[string]interface{}) map[string]interface{} {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/imar-ruhsat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestPermitController_Create_Success(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())

	assert.NotZero(t, created["id"])
	assert.Regexp(t, `^IR\d{12}$`, created["basvuruNo"])
	assert.Equal(t, "BEKLEMEDE", created["basvuruDurumu"])
	assert.Equal(t, model.Today().String(), created["basvuruTarihi"])
}

func TestPermitController_Create_MissingFields(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	body := createRequestBody()
	delete(body, "basvuruSahibiAdi")
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/imar-ruhsat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
}

func TestPermitController_Create_DuplicateNumber(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	body := createRequestBody()
	body["basvuruNo"] = "IR202603010001"
	postApplication(t, router, body)

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/imar-ruhsat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "IMAR_BASVURU_NO_EXISTS", response["error"])
}

func TestPermitController_GetByID(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/imar-ruhsat/%d", id), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, created["basvuruNo"], response["basvuruNo"])
}

func TestPermitController_GetByID_NotFound(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "IMAR_BASVURU_NOT_FOUND", response["error"])
}

func TestPermitController_GetByID_InvalidID(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermitController_GetByBasvuruNo(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	basvuruNo := created["basvuruNo"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/basvuru-no/"+basvuruNo, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPermitController_Update(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	payload, _ := json.Marshal(map[string]interface{}{
		"basvuruSahibiTelefon": "05009876543",
		"katSayisi":            4,
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/imar-ruhsat/%d", id), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "05009876543", response["basvuruSahibiTelefon"])
	assert.EqualValues(t, 4, response["katSayisi"])
	assert.Equal(t, created["basvuruSahibiAdi"], response["basvuruSahibiAdi"])
}

func TestPermitController_UpdateStatus_Approval(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	payload, _ := json.Marshal(map[string]interface{}{
		"basvuruDurumu": "ONAYLANDI",
		"notlar":        "evraklar tamam",
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/imar-ruhsat/%d/durum", id), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ONAYLANDI", response["basvuruDurumu"])
	assert.Regexp(t, `^RU\d{10}$`, response["ruhsatNo"])

	today := model.Today()
	assert.Equal(t, today.String(), response["onayTarihi"])
	assert.Equal(t, today.String(), response["ruhsatTarihi"])
	assert.Equal(t, today.AddYears(2).String(), response["ruhsatGecerlilikTarihi"])
}

func TestPermitController_UpdateStatus_InvalidStatus(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	payload, _ := json.Marshal(map[string]interface{}{
		"basvuruDurumu": "ARSIVLENDI",
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/imar-ruhsat/%d/durum", id), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermitController_Delete(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/imar-ruhsat/%d", id), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["deleted"])

	// Unknown id still answers 200, with deleted=false
	req = httptest.NewRequest(http.MethodDelete, "/api/imar-ruhsat/9999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["deleted"])
}

func TestPermitController_List_ExcludesDeleted(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	created := postApplication(t, router, createRequestBody())
	postApplication(t, router, createRequestBody())
	id := int(created["id"].(float64))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/imar-ruhsat/%d", id), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestPermitController_Search(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	postApplication(t, router, createRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/search?keyword=arslan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestPermitController_GetByDateRange_InvalidDate(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/tarih-araligi?startDate=01.03.2026&endDate=2026-03-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "VALIDATION_INVALID_DATE", response["error"])
}

func TestPermitController_CountByDurumu(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	postApplication(t, router, createRequestBody())
	postApplication(t, router, createRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/istatistik/basvuru-durumu/BEKLEMEDE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
}

func TestPermitController_Dashboard(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	postApplication(t, router, createRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	for _, key := range []string{
		"bekleyenBasvuru", "incelenenBasvuru", "onaylananBasvuru",
		"reddedilenBasvuru", "buAykiBasvuru", "toplamBasvuru",
	} {
		assert.Contains(t, response, key)
	}
	assert.Equal(t, float64(1), response["bekleyenBasvuru"])
	assert.Equal(t, float64(1), response["toplamBasvuru"])
}

func TestPermitController_Export(t *testing.T) {
	router, _ := setupPermitControllerTest(t)

	postApplication(t, router, createRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/api/imar-ruhsat/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"),
	)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}
