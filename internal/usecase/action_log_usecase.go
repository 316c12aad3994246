package usecase

import (
	"context"

	"triage-waitlist/internal/converter"
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type ActionLogUsecase interface {
	GetAllActionLogs(ctx context.Context) (*dto.ActionLogListResponse, error)
	GetPatientActionLogs(ctx context.Context, patientID int64) (*dto.ActionLogListResponse, error)
}

type actionLogUsecase struct {
	store repository.Store
	log   *logrus.Logger
}

func NewActionLogUsecase(store repository.Store, log *logrus.Logger) ActionLogUsecase {
	return &actionLogUsecase{
		store: store,
		log:   log,
	}
}

func (u *actionLogUsecase) GetAllActionLogs(ctx context.Context) (*dto.ActionLogListResponse, error) {
	logs, err := u.store.ActionLogs().FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all action logs: %+v", err)
		return nil, storageFailure(err)
	}

	return &dto.ActionLogListResponse{
		Logs:  converter.ActionLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

// GetPatientActionLogs returns the history of one patient, newest first.
// History outlives removal, and an unknown patient simply has none.
func (u *actionLogUsecase) GetPatientActionLogs(ctx context.Context, patientID int64) (*dto.ActionLogListResponse, error) {
	logs, err := u.store.ActionLogs().FindByPatientID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find action logs for patient %d: %+v", patientID, err)
		return nil, storageFailure(err)
	}

	return &dto.ActionLogListResponse{
		Logs:  converter.ActionLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
