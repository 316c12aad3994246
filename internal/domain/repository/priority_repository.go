package repository

import (
	"context"

	"triage-waitlist/internal/domain/entity"
)

type PriorityRepository interface {
	FindAll(ctx context.Context) ([]entity.Priority, error)
	FindByID(ctx context.Context, id int) (*entity.Priority, error)
}
