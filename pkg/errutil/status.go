package errutil

import "net/http"

// CoreStatus is the transport-neutral error code carried by BaseError.
type CoreStatus string

const (
	StatusBadRequest         CoreStatus = "BAD_REQUEST"
	StatusValidationFailed   CoreStatus = "VALIDATION_FAILED"
	StatusNotFound           CoreStatus = "NOT_FOUND"
	StatusInternal           CoreStatus = "INTERNAL"
	StatusServiceUnavailable CoreStatus = "SERVICE_UNAVAILABLE"
	StatusUnknown            CoreStatus = "UNKNOWN"
)

// HTTPStatus converts the CoreStatus to its HTTP status code equivalent.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusNotFound:
		return http.StatusNotFound
	case StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
