package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в v1.MapDomainError)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnsupportedFile  = errors.New("unsupported_file")   // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrConflict         = errors.New("conflict")           // 409
	ErrTooManyRequests  = errors.New("too_many_requests")  // 429
	ErrNotImplemented   = errors.New("not_implemented")    // 501
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Коды ошибок в конверте ответа
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeForbidden        = 1003
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeUnsupportedFile  = 1006
	ErrCodeConflict         = 1009
	ErrCodeTooManyRequests  = 1029
	ErrCodeUnexpected       = 1500
	ErrCodeNotImplemented   = 1501
)
