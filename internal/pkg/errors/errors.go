package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalid           = errors.New("invalid")
	ErrConflict          = errors.New("conflict")
	ErrTooMany           = errors.New("too many requests")
	ErrInternal          = errors.New("internal")
	ErrWriteRejected     = errors.New("write rejected")
	ErrEmptyDraft        = errors.New("title or message required")
	ErrInvalidTransition = errors.New("invalid editor transition")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsWriteRejected(err error) bool {
	return errors.Is(err, ErrWriteRejected)
}
