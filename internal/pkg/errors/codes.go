package errors

import "net/http"

const (
	CodeLocationPermissionDenied = "LOCATION_PERMISSION_DENIED"
	CodeLocationUnavailable      = "LOCATION_UNAVAILABLE"
	CodeLocationTimeout          = "LOCATION_TIMEOUT"
	CodeLocationUnresolved       = "LOCATION_UNRESOLVED"
	CodeNetworkError             = "NETWORK_ERROR"
	CodeRateLimited              = "RATE_LIMITED"
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeCancelled                = "CANCELLED"
	CodeSearchBusy               = "SEARCH_BUSY"
	CodeInternalServer           = "INTERNAL_SERVER_ERROR"
)

var (
	ErrLocationPermissionDenied = New(
		CodeLocationPermissionDenied,
		"Geolocation permission denied",
		http.StatusForbidden,
	)

	ErrLocationUnavailable = New(
		CodeLocationUnavailable,
		"Location is not available",
		http.StatusServiceUnavailable,
	)

	ErrLocationTimeout = New(
		CodeLocationTimeout,
		"Timed out waiting for a location fix",
		http.StatusGatewayTimeout,
	)

	// ErrLocationUnresolved - терминальная ошибка: и точная геолокация,
	// и IP-fallback не дали позицию. Автоматических повторов нет.
	ErrLocationUnresolved = New(
		CodeLocationUnresolved,
		"Unable to determine your location",
		http.StatusServiceUnavailable,
	)

	ErrNetworkError = New(
		CodeNetworkError,
		"Search request failed, please try again",
		http.StatusBadGateway,
	)

	ErrRateLimited = New(
		CodeRateLimited,
		"Too many search requests, please wait a moment",
		http.StatusTooManyRequests,
	)

	ErrInvalidRequest = New(
		CodeInvalidRequest,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrCancelled = New(
		CodeCancelled,
		"Request cancelled",
		http.StatusConflict,
	)

	ErrSearchBusy = New(
		CodeSearchBusy,
		"A search is already in progress",
		http.StatusConflict,
	)

	ErrInternalServer = New(
		CodeInternalServer,
		"Internal server error",
		http.StatusInternalServerError,
	)
)
