// Package service holds the bookstore's business operations. Services own
// transaction boundaries and translate persistence errors into domain errors.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// storeError converts store sentinels into domain errors, keeping the store's
// message. Domain errors pass through untouched; anything else is wrapped with op.
func storeError(err error, op string) error {
	if err == nil {
		return nil
	}

	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}

	var se *store.Error
	if errors.As(err, &se) {
		switch {
		case errors.Is(se, store.ErrNotFound):
			return domainerrors.NotFound(se.Message)
		case errors.Is(se, store.ErrAlreadyExists):
			return domainerrors.AlreadyExists(se.Message)
		case errors.Is(se, store.ErrInvalidInput):
			return domainerrors.Validation(se.Message)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
