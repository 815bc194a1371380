package dberr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"gorm.io/gorm"
)

// Map turns a persistence failure into an *apierr.Error. op names the
// operation and becomes part of the code, e.g. "template_create_conflict".
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound(op+"_not_found", wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.Upstream(op+"_timeout", wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return apierr.Conflict(op+"_conflict", wrapped)
		case "23503": // foreign_key_violation
			return apierr.BadRequest(op+"_reference_invalid", wrapped)
		case "40001", "40P01", "55P03": // serialization/deadlock/lock_not_available
			return apierr.Upstream(op+"_retryable", wrapped)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return apierr.Conflict(op+"_conflict", wrapped)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "connection refused"):
		return apierr.Upstream(op+"_unavailable", wrapped)
	default:
		return apierr.Upstream(op+"_failed", wrapped)
	}
}
