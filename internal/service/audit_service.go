package service

import (
	"context"
	"time"

	"triage-waitlist/internal/domain/entity"
	"triage-waitlist/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Clock supplies timestamps for arrivals and action log entries
type Clock func() time.Time

// SystemClock returns the current UTC time truncated to the microsecond
// precision PostgreSQL stores, so in-memory and persisted values compare equal.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// AuditService writes action log entries inside the caller's transaction.
// The entry is only visible once the caller's transaction commits.
type AuditService interface {
	LogAdd(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, notes string) (*entity.ActionLog, error)
	LogPriorityChange(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, oldPriorityID, newPriorityID int, notes string) (*entity.ActionLog, error)
	LogRemove(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, notes string) (*entity.ActionLog, error)
}

type auditService struct {
	log *logrus.Logger
	now Clock
}

func NewAuditService(log *logrus.Logger, now Clock) AuditService {
	if now == nil {
		now = SystemClock
	}
	return &auditService{
		log: log,
		now: now,
	}
}

// LogAdd records a patient check-in. Only the new priority is set.
func (s *auditService) LogAdd(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, notes string) (*entity.ActionLog, error) {
	newPriorityID := patient.PriorityID

	return s.append(ctx, tx, &entity.ActionLog{
		PatientID:     patient.ID,
		ActionType:    entity.ActionTypeAddPatient,
		NewPriorityID: &newPriorityID,
		Notes:         notesOrDefault(notes, entity.DefaultNotesAddPatient),
		PerformedBy:   actor,
	}, patient)
}

// LogPriorityChange records a priority transition; old and new may be equal
func (s *auditService) LogPriorityChange(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, oldPriorityID, newPriorityID int, notes string) (*entity.ActionLog, error) {
	return s.append(ctx, tx, &entity.ActionLog{
		PatientID:     patient.ID,
		ActionType:    entity.ActionTypeChangePriority,
		OldPriorityID: &oldPriorityID,
		NewPriorityID: &newPriorityID,
		Notes:         notesOrDefault(notes, entity.DefaultNotesChangePriority),
		PerformedBy:   actor,
	}, patient)
}

// LogRemove records a removal. Only the old priority is set.
func (s *auditService) LogRemove(ctx context.Context, tx repository.Store, actor *string, patient *entity.Patient, notes string) (*entity.ActionLog, error) {
	oldPriorityID := patient.PriorityID

	return s.append(ctx, tx, &entity.ActionLog{
		PatientID:     patient.ID,
		ActionType:    entity.ActionTypeRemovePatient,
		OldPriorityID: &oldPriorityID,
		Notes:         notesOrDefault(notes, entity.DefaultNotesRemovePatient),
		PerformedBy:   actor,
	}, patient)
}

func (s *auditService) append(ctx context.Context, tx repository.Store, actionLog *entity.ActionLog, patient *entity.Patient) (*entity.ActionLog, error) {
	actionLog.ActionTimestamp = s.now()
	actionLog.PatientSnapshot = datatypes.NewJSONType(entity.SnapshotOf(patient))

	if err := tx.ActionLogs().Create(ctx, actionLog); err != nil {
		s.log.Warnf("Failed to create action log: %+v", err)
		return nil, err
	}

	return actionLog, nil
}

func notesOrDefault(notes, fallback string) string {
	if notes == "" {
		return fallback
	}
	return notes
}
