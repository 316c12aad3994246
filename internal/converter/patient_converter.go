package converter

import (
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO.
// Tier details come from the static priority table.
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	response := &dto.PatientResponse{
		PatientID:     patient.ID,
		Code:          patient.Code,
		Name:          patient.Name,
		InjuryType:    patient.InjuryType,
		PainLevel:     patient.PainLevel,
		ArrivalTime:   patient.ArrivalTime,
		PriorityID:    patient.PriorityID,
		PriorityLevel: entity.PriorityLevelName(patient.PriorityID),
	}

	for _, p := range entity.DefaultPriorities {
		if p.ID == patient.PriorityID {
			response.EstimatedWaitTime = p.EstimatedWaitTime
			break
		}
	}

	return response
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i, patient := range patients {
		resp := PatientToResponse(&patient)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
