package converter

import (
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/domain/entity"
)

func PriorityToResponse(priority *entity.Priority) *dto.PriorityResponse {
	if priority == nil {
		return nil
	}

	return &dto.PriorityResponse{
		PriorityID:        priority.ID,
		LevelName:         priority.LevelName,
		Description:       priority.Description,
		ColorCode:         priority.ColorCode,
		EstimatedWaitTime: priority.EstimatedWaitTime,
	}
}

func PrioritiesToResponses(priorities []entity.Priority) []dto.PriorityResponse {
	responses := make([]dto.PriorityResponse, len(priorities))
	for i, priority := range priorities {
		responses[i] = *PriorityToResponse(&priority)
	}
	return responses
}
