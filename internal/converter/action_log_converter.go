package converter

import (
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/domain/entity"
)

// ActionLogToResponse converts an ActionLog entity to ActionLogResponse DTO
func ActionLogToResponse(log *entity.ActionLog) *dto.ActionLogResponse {
	if log == nil {
		return nil
	}

	snapshot := log.PatientSnapshot.Data()

	return &dto.ActionLogResponse{
		ActionID:        log.ID,
		PatientID:       log.PatientID,
		ActionType:      string(log.ActionType),
		OldPriorityID:   log.OldPriorityID,
		NewPriorityID:   log.NewPriorityID,
		ActionTimestamp: log.ActionTimestamp,
		Notes:           log.Notes,
		PerformedBy:     log.PerformedBy,
		Patient: dto.PatientSnapshotResponse{
			Code:        snapshot.Code,
			Name:        snapshot.Name,
			InjuryType:  snapshot.InjuryType,
			PainLevel:   snapshot.PainLevel,
			ArrivalTime: snapshot.ArrivalTime,
		},
	}
}

// ActionLogsToResponses converts a slice of ActionLog entities to slice of ActionLogResponse DTOs
func ActionLogsToResponses(logs []entity.ActionLog) []dto.ActionLogResponse {
	responses := make([]dto.ActionLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = *ActionLogToResponse(&log)
	}
	return responses
}
