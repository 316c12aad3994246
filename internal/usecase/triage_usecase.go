package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"triage-waitlist/internal/converter"
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/delivery/http/middleware"
	"triage-waitlist/internal/domain/entity"
	"triage-waitlist/internal/domain/repository"
	"triage-waitlist/internal/service"
	"triage-waitlist/pkg/validator"

	"github.com/sirupsen/logrus"
)

type TriageUsecase interface {
	ListPatients(ctx context.Context) (*dto.PatientListResponse, error)
	GetPatient(ctx context.Context, patientID int64) (*dto.PatientResponse, error)
	GetPatientStatus(ctx context.Context, req *dto.PatientStatusRequest) (*dto.PatientStatusListResponse, error)
	GetWaitlistSummary(ctx context.Context) (*dto.WaitlistSummaryResponse, error)
	AddPatient(ctx context.Context, req *dto.AddPatientRequest) (*dto.PatientResponse, error)
	ChangePriority(ctx context.Context, patientID int64, req *dto.ChangePriorityRequest) (*dto.PriorityChangeResponse, error)
	IncreaseAttention(ctx context.Context, patientID int64, req *dto.AttentionRequest) (*dto.PriorityChangeResponse, error)
	DecreaseAttention(ctx context.Context, patientID int64, req *dto.AttentionRequest) (*dto.PriorityChangeResponse, error)
	ReassessPatient(ctx context.Context, patientID int64, req *dto.ReassessRequest) (*dto.PriorityChangeResponse, error)
	RemovePatient(ctx context.Context, patientID int64, req *dto.RemovePatientRequest) (*dto.ActionLogResponse, error)
}

type triageUsecase struct {
	store         repository.Store
	log           *logrus.Logger
	validator     *validator.CustomValidator
	auditService  service.AuditService
	waitlistCache service.WaitlistCache
	publisher     service.ActionLogPublisher
	now           service.Clock
}

func NewTriageUsecase(
	store repository.Store,
	log *logrus.Logger,
	customValidator *validator.CustomValidator,
	auditService service.AuditService,
	waitlistCache service.WaitlistCache,
	publisher service.ActionLogPublisher,
	now service.Clock,
) TriageUsecase {
	if now == nil {
		now = service.SystemClock
	}
	return &triageUsecase{
		store:         store,
		log:           log,
		validator:     customValidator,
		auditService:  auditService,
		waitlistCache: waitlistCache,
		publisher:     publisher,
		now:           now,
	}
}

// ListPatients returns every active patient, most urgent first
func (u *triageUsecase) ListPatients(ctx context.Context) (*dto.PatientListResponse, error) {
	patients, err := u.sortedWaitlist(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

func (u *triageUsecase) GetPatient(ctx context.Context, patientID int64) (*dto.PatientResponse, error) {
	patient, err := u.store.Patients().FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return nil, storageFailure(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

// GetPatientStatus reports the queue position of every active patient
// registered under the code. Positions are 1-based in the sorted waitlist.
func (u *triageUsecase) GetPatientStatus(ctx context.Context, req *dto.PatientStatusRequest) (*dto.PatientStatusListResponse, error) {
	normalized := dto.PatientStatusRequest{Code: strings.ToUpper(strings.TrimSpace(req.Code))}
	if err := u.validate(&normalized); err != nil {
		return nil, err
	}

	patients, err := u.sortedWaitlist(ctx)
	if err != nil {
		return nil, err
	}

	statuses := []dto.PatientStatusResponse{}
	for i := range patients {
		if patients[i].Code != normalized.Code {
			continue
		}
		patient := converter.PatientToResponse(&patients[i])
		statuses = append(statuses, dto.PatientStatusResponse{
			Patient:           *patient,
			QueuePosition:     i + 1,
			PatientsAhead:     i,
			PriorityLevel:     patient.PriorityLevel,
			EstimatedWaitTime: patient.EstimatedWaitTime,
		})
	}
	if len(statuses) == 0 {
		return nil, ErrPatientNotFound
	}

	return &dto.PatientStatusListResponse{
		Statuses: statuses,
		Total:    len(statuses),
	}, nil
}

// GetWaitlistSummary counts active patients per tier; every tier is present
func (u *triageUsecase) GetWaitlistSummary(ctx context.Context) (*dto.WaitlistSummaryResponse, error) {
	counts, err := u.store.Patients().CountByPriority(ctx)
	if err != nil {
		u.log.Warnf("Failed to count patients by priority: %+v", err)
		return nil, storageFailure(err)
	}

	summary := &dto.WaitlistSummaryResponse{
		ByPriority: make([]dto.PriorityCountResponse, 0, len(entity.DefaultPriorities)),
	}
	for _, p := range entity.DefaultPriorities {
		count := counts[p.ID]
		summary.Total += count
		summary.ByPriority = append(summary.ByPriority, dto.PriorityCountResponse{
			PriorityID: p.ID,
			LevelName:  p.LevelName,
			Count:      count,
		})
	}

	return summary, nil
}

// AddPatient checks a patient in with a priority derived from the pain level.
// The patient row and its Add Patient log entry are written in one transaction.
func (u *triageUsecase) AddPatient(ctx context.Context, req *dto.AddPatientRequest) (*dto.PatientResponse, error) {
	normalized := *req
	normalized.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	normalized.Name = strings.TrimSpace(req.Name)
	normalized.InjuryType = strings.ToLower(strings.TrimSpace(req.InjuryType))
	normalized.Notes = strings.TrimSpace(req.Notes)

	if err := u.validate(&normalized); err != nil {
		return nil, err
	}

	patient := &entity.Patient{
		Code:        normalized.Code,
		Name:        normalized.Name,
		InjuryType:  normalized.InjuryType,
		PainLevel:   *normalized.PainLevel,
		ArrivalTime: u.now(),
		PriorityID:  entity.ClassifyPainLevel(*normalized.PainLevel),
	}

	var actionLog *entity.ActionLog
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Patients().Create(ctx, patient); err != nil {
			return err
		}

		var err error
		actionLog, err = u.auditService.LogAdd(ctx, tx, u.patientActor(ctx, entity.ActorSelfRegistration), patient, normalized.Notes)
		return err
	})
	if err != nil {
		u.log.Warnf("Failed to add patient: %+v", err)
		return nil, storageFailure(err)
	}

	u.afterCommit(ctx, actionLog)
	u.log.Infof("Patient %d added with priority %d", patient.ID, patient.PriorityID)

	return converter.PatientToResponse(patient), nil
}

// ChangePriority sets the priority explicitly. A request for the current
// priority returns Changed=false and writes nothing.
func (u *triageUsecase) ChangePriority(ctx context.Context, patientID int64, req *dto.ChangePriorityRequest) (*dto.PriorityChangeResponse, error) {
	normalized := *req
	normalized.Notes = strings.TrimSpace(req.Notes)
	if err := u.validate(&normalized); err != nil {
		return nil, err
	}

	return u.applyPriorityChange(ctx, patientID, func(*entity.Patient) priorityChange {
		return priorityChange{
			priorityID: normalized.NewPriorityID,
			notes:      normalized.Notes,
			actor:      u.staffActor(ctx),
		}
	})
}

// IncreaseAttention moves the patient one tier towards Critical
func (u *triageUsecase) IncreaseAttention(ctx context.Context, patientID int64, req *dto.AttentionRequest) (*dto.PriorityChangeResponse, error) {
	return u.stepPriority(ctx, patientID, req, entity.EscalatedPriority)
}

// DecreaseAttention moves the patient one tier towards Low
func (u *triageUsecase) DecreaseAttention(ctx context.Context, patientID int64, req *dto.AttentionRequest) (*dto.PriorityChangeResponse, error) {
	return u.stepPriority(ctx, patientID, req, entity.DeescalatedPriority)
}

func (u *triageUsecase) stepPriority(ctx context.Context, patientID int64, req *dto.AttentionRequest, step func(int) int) (*dto.PriorityChangeResponse, error) {
	var normalized dto.AttentionRequest
	if req != nil {
		normalized.Notes = strings.TrimSpace(req.Notes)
	}
	if err := u.validate(&normalized); err != nil {
		return nil, err
	}

	return u.applyPriorityChange(ctx, patientID, func(patient *entity.Patient) priorityChange {
		next := step(patient.PriorityID)
		notes := normalized.Notes
		if notes == "" {
			notes = fmt.Sprintf("Priority changed from %s to %s by admin dashboard",
				entity.PriorityLevelName(patient.PriorityID), entity.PriorityLevelName(next))
		}
		return priorityChange{priorityID: next, notes: notes, actor: u.staffActor(ctx)}
	})
}

// ReassessPatient re-triages a waiting patient from an updated pain report.
// The pain level is stored only when the new classification moves the
// patient to another tier; otherwise the result is Changed=false and
// nothing is written.
func (u *triageUsecase) ReassessPatient(ctx context.Context, patientID int64, req *dto.ReassessRequest) (*dto.PriorityChangeResponse, error) {
	normalized := *req
	normalized.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	normalized.Notes = strings.TrimSpace(req.Notes)
	if err := u.validate(&normalized); err != nil {
		return nil, err
	}
	painLevel := *normalized.PainLevel

	return u.applyPriorityChange(ctx, patientID, func(patient *entity.Patient) priorityChange {
		if patient.Code != normalized.Code {
			return priorityChange{reject: ErrPatientNotFound}
		}

		next := entity.ClassifyPainLevel(painLevel)
		notes := normalized.Notes
		if notes == "" {
			notes = fmt.Sprintf("Priority reassessed from %s to %s after pain level update (%d to %d)",
				entity.PriorityLevelName(patient.PriorityID), entity.PriorityLevelName(next),
				patient.PainLevel, painLevel)
		}
		return priorityChange{
			priorityID: next,
			painLevel:  &painLevel,
			notes:      notes,
			actor:      u.patientActor(ctx, entity.ActorSelfReassessment),
		}
	})
}

// priorityChange is the outcome decided for a locked patient row
type priorityChange struct {
	priorityID int
	painLevel  *int
	notes      string
	actor      *string
	reject     error
}

// applyPriorityChange locks the patient row, asks decide for the target
// priority, then updates and logs in the same transaction. An unchanged
// target yields Changed=false and no writes at all.
func (u *triageUsecase) applyPriorityChange(
	ctx context.Context,
	patientID int64,
	decide func(patient *entity.Patient) priorityChange,
) (*dto.PriorityChangeResponse, error) {
	var (
		patient   *entity.Patient
		actionLog *entity.ActionLog
	)

	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		patient, err = tx.Patients().FindByIDForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		change := decide(patient)
		if change.reject != nil {
			return change.reject
		}

		oldPriorityID := patient.PriorityID
		if change.priorityID == oldPriorityID {
			return nil
		}

		if change.painLevel != nil {
			if err := tx.Patients().UpdatePainLevel(ctx, patientID, *change.painLevel); err != nil {
				if errors.Is(err, repository.ErrRecordMissing) {
					return ErrPatientNotFound
				}
				return err
			}
			patient.PainLevel = *change.painLevel
		}

		if err := tx.Patients().UpdatePriority(ctx, patientID, change.priorityID); err != nil {
			if errors.Is(err, repository.ErrRecordMissing) {
				return ErrPatientNotFound
			}
			return err
		}
		patient.PriorityID = change.priorityID

		actionLog, err = u.auditService.LogPriorityChange(ctx, tx, change.actor, patient, oldPriorityID, change.priorityID, change.notes)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPatientNotFound) {
			u.log.Warnf("Failed to change priority of patient %d: %+v", patientID, err)
		}
		return nil, storageFailure(err)
	}

	result := &dto.PriorityChangeResponse{
		Changed: actionLog != nil,
		Patient: *converter.PatientToResponse(patient),
	}
	if actionLog == nil {
		return result, nil
	}

	u.afterCommit(ctx, actionLog)
	u.log.Infof("Patient %d priority changed from %d to %d",
		patientID, *actionLog.OldPriorityID, *actionLog.NewPriorityID)

	result.ActionLog = converter.ActionLogToResponse(actionLog)
	return result, nil
}

// RemovePatient takes the patient off the waitlist. The Remove Patient
// entry keeps the final priority and a snapshot of the patient.
func (u *triageUsecase) RemovePatient(ctx context.Context, patientID int64, req *dto.RemovePatientRequest) (*dto.ActionLogResponse, error) {
	var normalized dto.RemovePatientRequest
	if req != nil {
		normalized.Notes = strings.TrimSpace(req.Notes)
	}
	if err := u.validate(&normalized); err != nil {
		return nil, err
	}

	var actionLog *entity.ActionLog
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		patient, err := tx.Patients().FindByIDForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		actionLog, err = u.auditService.LogRemove(ctx, tx, u.staffActor(ctx), patient, normalized.Notes)
		if err != nil {
			return err
		}

		if err := tx.Patients().Delete(ctx, patientID); err != nil {
			if errors.Is(err, repository.ErrRecordMissing) {
				return ErrPatientNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrPatientNotFound) {
			u.log.Warnf("Failed to remove patient %d: %+v", patientID, err)
		}
		return nil, storageFailure(err)
	}

	u.afterCommit(ctx, actionLog)
	u.log.Infof("Patient %d removed from waitlist", patientID)

	return converter.ActionLogToResponse(actionLog), nil
}

// sortedWaitlist reads the canonical ordering through the read cache
func (u *triageUsecase) sortedWaitlist(ctx context.Context) ([]entity.Patient, error) {
	patients, version, hit := u.waitlistCache.GetWaitlist(ctx)
	if hit {
		return patients, nil
	}

	patients, err := u.store.Patients().FindAllSorted(ctx)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, storageFailure(err)
	}

	u.waitlistCache.SetWaitlist(ctx, version, patients)
	return patients, nil
}

// afterCommit runs post-commit side effects; neither can fail the request
func (u *triageUsecase) afterCommit(ctx context.Context, actionLog *entity.ActionLog) {
	u.waitlistCache.InvalidateWaitlist(ctx)
	u.publisher.Publish(ctx, *actionLog)
}

func (u *triageUsecase) validate(req interface{}) error {
	if err := u.validator.Validate(req); err != nil {
		fields := u.validator.FormatValidationErrors(err)
		if len(fields) == 0 {
			fields = map[string]string{"request": err.Error()}
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

// staffActor is the staff identity for performed_by, if any
func (u *triageUsecase) staffActor(ctx context.Context) *string {
	if subject, ok := middleware.GetStaffSubjectFromContext(ctx); ok {
		return &subject
	}
	return nil
}

// patientActor is the staff identity when present, otherwise label for
// requests a patient made on their own
func (u *triageUsecase) patientActor(ctx context.Context, label string) *string {
	if actor := u.staffActor(ctx); actor != nil {
		return actor
	}
	return &label
}
