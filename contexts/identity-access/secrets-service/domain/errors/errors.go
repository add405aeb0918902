package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrKeyNotFound    = errors.New("api key not found")
	ErrKeyInvalid     = errors.New("api key invalid")
)
