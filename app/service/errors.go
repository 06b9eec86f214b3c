package service

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	ErrEventUnparsable  = errors.New("webhook event could not be parsed")
)
