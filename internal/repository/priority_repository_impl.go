package repository

import (
	"context"
	"errors"

	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"

	"gorm.io/gorm"
)

type priorityRepository struct {
	db *gorm.DB
}

func NewPriorityRepository(db *gorm.DB) domainRepo.PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) FindAll(ctx context.Context) ([]entity.Priority, error) {
	var priorities []entity.Priority
	err := r.db.WithContext(ctx).Order("priority_id ASC").Find(&priorities).Error
	if err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *priorityRepository) FindByID(ctx context.Context, id int) (*entity.Priority, error) {
	var priority entity.Priority
	err := r.db.WithContext(ctx).Where("priority_id = ?", id).First(&priority).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &priority, nil
}
