package services

import (
	"errors"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/repositories"
)

// maxTxRetries bounds retries of a whole critical section after a lost
// optimistic-concurrency race. Exhaustion surfaces ErrStaleVersion (409).
const maxTxRetries = 3

// storeErr translates repository sentinels into the application error
// taxonomy. Errors that are already AppErrors pass through unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrShiftNotFound):
		return appErrors.ErrShiftNotFound
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return appErrors.ErrApplicationNotFound
	case errors.Is(err, repositories.ErrStaleVersion):
		return appErrors.ErrStaleVersion
	default:
		return appErrors.DatabaseError(err)
	}
}

func withTxRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = fn()
		if !appErrors.Is(err, appErrors.ErrStaleVersion) {
			return err
		}
	}
	return err
}

func requireID(value, field string) error {
	if value == "" {
		return appErrors.ValidationError(map[string]string{field: "must not be empty"})
	}
	return nil
}
