package infrastructure

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TimeOperation executes an operation and logs its execution time
func TimeOperation(ctx context.Context, name string, operation func() error) error {
	start := time.Now()
	err := operation()
	slog.Log(ctx, slog.LevelDebug, "store operation", "op", name, "took", time.Since(start), "failed", err != nil)
	return err
}

// WithTransaction runs operation inside a gorm transaction. The
// transaction commits when operation returns nil and rolls back on error
// or panic.
func WithTransaction(ctx context.Context, db *gorm.DB, operation func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(operation)
	if err != nil {
		slog.Log(ctx, slog.LevelDebug, "transaction rolled back", "error", err)
	}
	return err
}

// StoreError classifies an error returned by the database layer. Record
// misses become ErrNotFound, connection-class failures become
// ErrTransientStore so callers can retry, and everything else is wrapped
// unchanged.
func StoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation), errors.Is(err, ErrTransientStore):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case IsTransient(err):
		return fmt.Errorf("%s: %w: %v", op, ErrTransientStore, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsTransient reports whether err looks like a failure that may succeed
// if retried: a dropped connection, a timeout, a serialization conflict
// or a server shutting down.
func IsTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
			return true
		case code == "40001", code == "40P01":
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
