package domain

import "errors"

// Error kinds surfaced by the application layer. Callers wrap them with
// fmt.Errorf("%w: ...") and inspect them with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not permitted")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUpload         = errors.New("upload failed")
)
