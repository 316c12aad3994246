package repository

import (
	"context"

	"triage-waitlist/internal/domain/entity"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	FindByID(ctx context.Context, id int64) (*entity.Patient, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Patient, error)
	FindAllSorted(ctx context.Context) ([]entity.Patient, error)
	CountByPriority(ctx context.Context) (map[int]int64, error)
	UpdatePriority(ctx context.Context, id int64, priorityID int) error
	UpdatePainLevel(ctx context.Context, id int64, painLevel int) error
	Delete(ctx context.Context, id int64) error
}
