package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrAuth        = errors.New("unauthorized")
	ErrInvalidCode = errors.New("invalid verification code")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrDependency  = errors.New("dependency failure")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrLineNotFound    = fmt.Errorf("cart line %w", ErrNotFound)

	ErrBadCredential = fmt.Errorf("wrong password: %w", ErrAuth)
	ErrNotVerified   = fmt.Errorf("account not verified: %w", ErrAuth)
)
