package errors

import "fmt"

var (
	ErrUnauthenticated  = fmt.Errorf("user not logged in")
	ErrMalformedMessage = fmt.Errorf("message must have either text or an image")
	ErrUpstream         = fmt.Errorf("upstream call failed")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrInvalidPath  = fmt.Errorf("invalid path")
	ErrInvalidQuery = fmt.Errorf("invalid query")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
