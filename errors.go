// errors.go
package projectprefs

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidValue       = errors.New("invalid preference value")
	ErrNotFound           = errors.New("item not found")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
)
