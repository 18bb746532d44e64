package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Source ingestion error codes.
//
// SourceUnreadable marks a table that could not be parsed at all; callers skip
// the source and continue with the others. SchemaError marks a table missing a
// required column role; it fails the whole batch that depended on the source,
// because no partial result is meaningful when no query can possibly succeed.
const (
	ErrCodeSourceUnreadable ErrorCode = "SRC_001"
	ErrCodeSchemaError      ErrorCode = "SRC_002"
	ErrCodePersistence      ErrorCode = "SRC_003"
	ErrCodeSourceFetch      ErrorCode = "SRC_004"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeSourceUnreadable:   http.StatusUnprocessableEntity,
	ErrCodeSchemaError:        http.StatusUnprocessableEntity,
	ErrCodePersistence:        http.StatusInternalServerError,
	ErrCodeSourceFetch:        http.StatusBadGateway,
}

// HTTPStatus returns the HTTP status for a code, defaulting to 500 for codes
// without an explicit mapping.
func HTTPStatus(code ErrorCode) int {
	if s, ok := ErrorCodeHTTPStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
