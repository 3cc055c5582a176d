package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when the store cannot be reached or a query
// fails for reasons other than a missing row. Callers surface it verbatim;
// no retries happen below this point.
var ErrUnavailable = errors.New("store unavailable")

// MapError translates a pgx error into the repository error taxonomy,
// preserving the underlying cause in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
