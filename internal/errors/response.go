package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standart hata yanıt yapısı
type ErrorResponse struct {
	Error   string `json:"error"`   // hata kodu (ön yüz eşlemesi için)
	Message string `json:"message"` // kullanıcıya gösterilecek mesaj
}

// RespondWithError hata yanıtı yardımcısı
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Sık kullanılan kısa yollar

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Kayıt bulunamadı"
	}
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Sunucu hatası oluştu. Lütfen daha sonra tekrar deneyin"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
