package services

import "gamereview-backend/internal/apperrors"

// MaxPageSize is the server-enforced page size ceiling for all listings.
const MaxPageSize = 10

func validatePage(limit, offset int) error {
	if limit <= 0 || limit > MaxPageSize {
		return apperrors.Validation("limit must be between 1 and 10")
	}
	if offset < 0 {
		return apperrors.Validation("offset must not be negative")
	}
	return nil
}
