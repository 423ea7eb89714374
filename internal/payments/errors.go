package payments

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("order already exists")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrRemoteFailure    = errors.New("payment gateway failure")
)
