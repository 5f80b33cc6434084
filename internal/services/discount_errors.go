package services

import "errors"

var (
	// ErrDiscountRepositoryMissing indicates the discount repository dependency is absent.
	ErrDiscountRepositoryMissing = errors.New("discount service: repository is not configured")
	// ErrDiscountNotFound indicates no discount exists for the requested id.
	ErrDiscountNotFound = errors.New("discount service: discount not found")
	// ErrDiscountInvalidCommand signals a redemption command missing required fields.
	ErrDiscountInvalidCommand = errors.New("discount service: invalid redemption command")
	// ErrDiscountStoreUnavailable indicates the discount store could not be reached for a write.
	ErrDiscountStoreUnavailable = errors.New("discount service: store unavailable")
)
