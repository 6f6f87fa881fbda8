package service

import (
	"errors"
	"fmt"
	"log"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFetch              = errors.New("fetch failed")
	ErrWrite              = errors.New("write failed")
)

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// fetchFailure and writeFailure log a store error at the operation boundary
// and wrap it for the caller. Nothing is retried.
func fetchFailure(op string, err error) error {
	log.Printf("❌ %s: %v", op, err)
	return fmt.Errorf("%w: %s: %w", ErrFetch, op, err)
}

func writeFailure(op string, err error) error {
	log.Printf("❌ %s: %v", op, err)
	return fmt.Errorf("%w: %s: %w", ErrWrite, op, err)
}
