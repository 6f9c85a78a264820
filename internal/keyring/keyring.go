// Package keyring keeps the store DSN in the OS keyring so PostgreSQL
// credentials stay out of shell history and config files.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "tally"
	account = "database"
)

var (
	// ErrNotFound is returned when no DSN is stored.
	ErrNotFound = errors.New("dsn not found in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached.
	ErrUnavailable = errors.New("OS keyring is not available")
)

// GetDSN retrieves the stored DSN.
func GetDSN() (string, error) {
	dsn, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return dsn, nil
}

// SetDSN stores dsn, replacing any previous value.
func SetDSN(dsn string) error {
	if dsn == "" {
		return errors.New("dsn cannot be empty")
	}
	if err := keyring.Set(service, account, dsn); err != nil {
		return fmt.Errorf("storing dsn in keyring: %w", err)
	}
	return nil
}

// DeleteDSN removes the stored DSN.
func DeleteDSN() error {
	err := keyring.Delete(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting dsn from keyring: %w", err)
	}
	return nil
}
