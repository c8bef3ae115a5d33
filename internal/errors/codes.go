package errors

// Hata kodu sabitleri
// Biçim: KATEGORI_AYRINTI
// Ön yüz bu kodlar üzerinden kullanıcı mesajlarını eşler

const (
	// ==================== Doğrulama (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // hatalı istek gövdesi
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // hatalı kayıt kimliği
	ValidationInvalidDate   = "VALIDATION_INVALID_DATE"   // çözümlenemeyen tarih
	ValidationInvalidStatus = "VALIDATION_INVALID_STATUS" // tanımsız başvuru durumu
	ValidationInvalidType   = "VALIDATION_INVALID_TYPE"   // tanımsız başvuru türü

	// ==================== Kaynak (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // kayıt yok ya da pasif
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // benzersizlik ihlali
	ResourceConflict      = "RESOURCE_CONFLICT"       // eşzamanlı yazma çatışması

	// ==================== İmar ruhsat (IMAR_) ====================
	ImarBasvuruNotFound = "IMAR_BASVURU_NOT_FOUND" // başvuru bulunamadı
	ImarBasvuruNoExists = "IMAR_BASVURU_NO_EXISTS" // başvuru numarası kullanımda

	// ==================== İç hata (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // sunucu hatası
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // veritabanı hatası
	InternalTimeout       = "INTERNAL_TIMEOUT"        // zaman aşımı
)
