package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes c and logs a failure under operation. A nil c
// is a no-op.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logCleanupFailure(logger, "close failed", operation, err)
	}
}

// SafeRollbackWithLogging is meant to be deferred right after BeginTx. After
// a commit the rollback reports sql.ErrTxDone, which is not logged.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logCleanupFailure(logger, "rollback failed", operation, err)
	}
}

// HandleDeferredError runs op and, when *errp is still nil, reports op's
// failure through it.
func HandleDeferredError(errp *error, op func() error, logger *slog.Logger, operation string) {
	if op == nil {
		return
	}
	err := op()
	if err == nil {
		return
	}
	logCleanupFailure(logger, "deferred cleanup failed", operation, err)
	if *errp == nil {
		*errp = fmt.Errorf("%s: %w", operation, err)
	}
}

func logCleanupFailure(logger *slog.Logger, msg, operation string, err error) {
	LogError(logger, msg, err, slog.String("operation", operation))
}
