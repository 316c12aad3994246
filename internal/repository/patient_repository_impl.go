package repository

import (
	"context"
	"errors"

	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// waitlistOrder is the canonical triage order: most urgent tier first, then arrival
const waitlistOrder = "priority_id ASC, arrival_time ASC, patient_id ASC"

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) domainRepo.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, id int64) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).Where("patient_id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// FindByIDForUpdate locks the patient row until the surrounding transaction ends.
// Outside a transaction the lock is released immediately.
func (r *patientRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("patient_id = ?", id).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindAllSorted(ctx context.Context) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := r.db.WithContext(ctx).Order(waitlistOrder).Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) CountByPriority(ctx context.Context) (map[int]int64, error) {
	type priorityCount struct {
		PriorityID int
		Total      int64
	}
	var rows []priorityCount

	err := r.db.WithContext(ctx).Model(&entity.Patient{}).
		Select("priority_id, COUNT(*) AS total").
		Group("priority_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.PriorityID] = row.Total
	}
	return counts, nil
}

func (r *patientRepository) UpdatePriority(ctx context.Context, id int64, priorityID int) error {
	result := r.db.WithContext(ctx).Model(&entity.Patient{}).
		Where("patient_id = ?", id).
		Update("priority_id", priorityID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrRecordMissing
	}
	return nil
}

func (r *patientRepository) UpdatePainLevel(ctx context.Context, id int64, painLevel int) error {
	result := r.db.WithContext(ctx).Model(&entity.Patient{}).
		Where("patient_id = ?", id).
		Update("pain_level", painLevel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrRecordMissing
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("patient_id = ?", id).Delete(&entity.Patient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrRecordMissing
	}
	return nil
}
