package repository

import (
	"context"

	domainRepo "triage-waitlist/internal/domain/repository"

	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

// NewStore returns a Postgres-backed Store. Transaction maps onto a gorm
// transaction, so every repository used inside fn shares one connection.
func NewStore(db *gorm.DB) domainRepo.Store {
	return &store{db: db}
}

func (s *store) Patients() domainRepo.PatientRepository {
	return NewPatientRepository(s.db)
}

func (s *store) ActionLogs() domainRepo.ActionLogRepository {
	return NewActionLogRepository(s.db)
}

func (s *store) Priorities() domainRepo.PriorityRepository {
	return NewPriorityRepository(s.db)
}

func (s *store) Transaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
