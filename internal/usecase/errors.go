package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrStorageFailure  = errors.New("storage failure")
)

// ValidationError reports malformed or missing input. Fields maps the
// offending request field to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// storageFailure tags err as a StorageFailure unless it already belongs to
// the client-facing taxonomy.
func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.Is(err, ErrPatientNotFound) || errors.Is(err, ErrStorageFailure) || errors.As(err, &ve) {
		return err
	}
	if constraint, ok := constraintViolation(err); ok {
		return newValidationError(constraint, "value rejected by constraint "+constraint)
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// constraintViolation reports PostgreSQL check (23514) and foreign key
// (23503) violations, which on this schema always mean bad input.
func constraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23514" || pgErr.Code == "23503" {
			return pgErr.ConstraintName, true
		}
	}
	return "", false
}
