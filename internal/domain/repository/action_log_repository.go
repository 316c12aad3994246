package repository

import (
	"context"

	"triage-waitlist/internal/domain/entity"
)

// ActionLogRepository is append-only: entries are never updated or deleted.
type ActionLogRepository interface {
	Create(ctx context.Context, log *entity.ActionLog) error
	FindAll(ctx context.Context) ([]entity.ActionLog, error)
	FindByPatientID(ctx context.Context, patientID int64) ([]entity.ActionLog, error)
}
