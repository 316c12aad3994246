package repository

import (
	"context"
	"errors"
)

// ErrRecordMissing is returned by mutating repository methods that target a row that does not exist
var ErrRecordMissing = errors.New("record missing")

// Store groups the waitlist repositories behind one unit of work.
// Repositories obtained inside Transaction see and mutate only the
// transaction's state; nothing is visible to others until fn returns nil.
type Store interface {
	Patients() PatientRepository
	ActionLogs() ActionLogRepository
	Priorities() PriorityRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
