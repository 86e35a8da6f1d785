package domain

import "errors"

// Error kinds understood by the HTTP error handler. Services wrap them with
// fmt.Errorf("%w: ...") to add detail; callers classify with errors.Is.
var (
	ErrNoData          = errors.New("no data provided")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotAllowed      = errors.New("not allowed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many requests")
)
