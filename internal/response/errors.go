package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrFeatureDisabled ErrCode = "FEATURE_DISABLED"

	// ─── Submission-specific ───────────────────────────────────────────
	ErrNoActiveClass   ErrCode = "NO_ACTIVE_CLASS"
	ErrClassNotActive  ErrCode = "CLASS_NOT_ACTIVE"
	ErrNoSubmissions   ErrCode = "NO_SUBMISSIONS"
	ErrFileNotFound    ErrCode = "FILE_NOT_FOUND"
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrTooManyFiles    ErrCode = "TOO_MANY_FILES"
	ErrStorageFailure  ErrCode = "STORAGE_FAILURE"
	ErrInvalidFormBody ErrCode = "INVALID_FORM"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Kata sandi admin salah."
	case ErrSessionInvalidated:
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrFeatureDisabled:
		return "Fitur ini tidak diaktifkan."

	// ─── Submission-specific ───────────────────────────────────────────
	case ErrNoActiveClass:
		return "Belum ada kelas yang aktif. Silakan hubungi guru/admin."
	case ErrClassNotActive:
		return "Kelas yang dipilih tidak aktif."
	case ErrNoSubmissions:
		return "Tidak ada tugas yang sesuai dengan filter."
	case ErrFileNotFound:
		return "File tidak ditemukan di server."
	case ErrFileRequired:
		return "Unggah minimal satu file."
	case ErrFileTooLarge:
		return "Ukuran file melebihi batas."
	case ErrTooManyFiles:
		return "Terlalu banyak file dalam satu pengiriman."
	case ErrStorageFailure:
		return "Gagal menyimpan tugas. Silakan coba lagi."
	case ErrInvalidFormBody:
		return "Form unggahan tidak valid."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
