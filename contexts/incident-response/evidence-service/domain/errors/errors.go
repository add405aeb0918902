package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrEvidenceNotFound = errors.New("evidence not found")
)
