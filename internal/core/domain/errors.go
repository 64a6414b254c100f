package domain

import "errors"

// Error kinds surfaced by the inventory engine. Callers distinguish them
// with errors.Is; adapters wrap driver failures in ErrPersistence, which
// always means the transaction was rolled back.
var (
	ErrValidation        = errors.New("invalid input")
	ErrDonorNotFound     = errors.New("donor not found")
	ErrDonationNotFound  = errors.New("donation not found")
	ErrUnauthorized      = errors.New("operation not permitted for role")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrPersistence       = errors.New("persistence failure")
)
