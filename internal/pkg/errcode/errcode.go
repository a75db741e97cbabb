package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthenticated
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrStreamClosed
)
