package service

import "errors"

// Error taxonomy for the payment flow. Handlers map these with
// errors.Is: caller errors surface immediately with no retry and no
// state mutation, processor errors during initiation leave the payment
// PENDING, persistence errors after a successful processor call are
// surfaced because the row needs operator attention.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrProcessor      = errors.New("payment processor error")
	ErrPersistence    = errors.New("persistence error")
)
