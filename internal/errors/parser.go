package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo taxonomy bucket for a store-level failure.
type ErrorInfo struct {
	Code    string // codes.go sabitlerinden biri
	Message string // kullanıcıya gösterilecek mesaj
}

// ParseError maps persistence errors onto the stable error taxonomy. The
// caller decides the HTTP status from the code; the raw error is logged, not
// exposed.
func ParseError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Sunucu hatası oluştu",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Kayıt bulunamadı",
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			Code:    InternalTimeout,
			Message: "İşlem zaman aşımına uğradı. Lütfen tekrar deneyin",
		}
	}

	if IsUniqueViolation(err) {
		return ErrorInfo{
			Code:    ImarBasvuruNoExists,
			Message: "Bu başvuru numarası zaten kayıtlı",
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Veritabanı bağlantısı kurulamadı. Lütfen daha sonra tekrar deneyin",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Sunucu hatası oluştu. Lütfen daha sonra tekrar deneyin",
	}
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Postgres surfaces SQLSTATE 23505 through lib/pq; the sqlite test database
// reports the constraint in the message text.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "constraint failed")
}
