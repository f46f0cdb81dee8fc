package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrInvalidLetter     = fmt.Errorf("invalid letter")
	ErrMalformedToken    = fmt.Errorf("malformed token")
	ErrUnexpectedPayload = fmt.Errorf("unexpected payload shape")
	ErrUnknownCommand    = fmt.Errorf("unknown command")
)
