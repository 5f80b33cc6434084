package services

import "errors"

var (
	// ErrPriceRepositoryMissing indicates the price component repository dependency is absent.
	ErrPriceRepositoryMissing = errors.New("unit price cache: repository is not configured")
	// ErrFlashRepositoryMissing indicates the flash discount repository dependency is absent.
	ErrFlashRepositoryMissing = errors.New("flash discount engine: repository is not configured")
	// ErrQuoteDependenciesMissing indicates the quote service was constructed without its pricing collaborators.
	ErrQuoteDependenciesMissing = errors.New("quote service: pricing dependencies are not configured")
)
