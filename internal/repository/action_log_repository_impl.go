package repository

import (
	"context"

	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"

	"gorm.io/gorm"
)

// newestFirst orders entries by write time; action_id breaks ties between entries written in the same instant
const newestFirst = "action_timestamp DESC, action_id DESC"

type actionLogRepository struct {
	db *gorm.DB
}

func NewActionLogRepository(db *gorm.DB) domainRepo.ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Create(ctx context.Context, log *entity.ActionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *actionLogRepository) FindAll(ctx context.Context) ([]entity.ActionLog, error) {
	var logs []entity.ActionLog
	err := r.db.WithContext(ctx).Order(newestFirst).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *actionLogRepository) FindByPatientID(ctx context.Context, patientID int64) ([]entity.ActionLog, error) {
	var logs []entity.ActionLog
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order(newestFirst).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
