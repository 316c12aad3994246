package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/usecase"
	"triage-waitlist/pkg/response"
)

type PatientHandler struct {
	triageUsecase usecase.TriageUsecase
}

func NewPatientHandler(triageUsecase usecase.TriageUsecase) *PatientHandler {
	return &PatientHandler{
		triageUsecase: triageUsecase,
	}
}

func (h *PatientHandler) AddPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.triageUsecase.AddPatient(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to add patient")
		return
	}

	response.Success(w, http.StatusCreated, "Patient added to waitlist", patient)
}

func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.triageUsecase.ListPatients(r.Context())
	if err != nil {
		writeUsecaseError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	patient, err := h.triageUsecase.GetPatient(r.Context(), patientID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

// GetPatientStatus serves the self-service queue lookup by patient code
func (h *PatientHandler) GetPatientStatus(w http.ResponseWriter, r *http.Request) {
	req := dto.PatientStatusRequest{Code: r.URL.Query().Get("code")}

	status, err := h.triageUsecase.GetPatientStatus(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get patient status")
		return
	}

	response.Success(w, http.StatusOK, "Patient status retrieved successfully", status)
}

func (h *PatientHandler) ChangePriority(w http.ResponseWriter, r *http.Request) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.ChangePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.triageUsecase.ChangePriority(r.Context(), patientID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to change priority")
		return
	}

	message := "Priority changed successfully"
	if !result.Changed {
		message = "Patient already has this priority, no change made"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *PatientHandler) IncreaseAttention(w http.ResponseWriter, r *http.Request) {
	h.stepAttention(w, r, h.triageUsecase.IncreaseAttention)
}

func (h *PatientHandler) DecreaseAttention(w http.ResponseWriter, r *http.Request) {
	h.stepAttention(w, r, h.triageUsecase.DecreaseAttention)
}

func (h *PatientHandler) stepAttention(
	w http.ResponseWriter,
	r *http.Request,
	step func(ctx context.Context, patientID int64, req *dto.AttentionRequest) (*dto.PriorityChangeResponse, error),
) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.AttentionRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := step(r.Context(), patientID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to change priority")
		return
	}

	message := "Priority changed successfully"
	if !result.Changed {
		message = "Priority already at limit, no change made"
	}
	response.Success(w, http.StatusOK, message, result)
}

// ReassessPatient lets a waiting patient report a new pain level
func (h *PatientHandler) ReassessPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.ReassessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.triageUsecase.ReassessPatient(r.Context(), patientID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to reassess patient")
		return
	}

	message := "Patient reassessed, priority changed"
	if !result.Changed {
		message = "Reassessment keeps the current priority, no change made"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *PatientHandler) RemovePatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.RemovePatientRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actionLog, err := h.triageUsecase.RemovePatient(r.Context(), patientID, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to remove patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient removed from waitlist", actionLog)
}

func (h *PatientHandler) GetWaitlistSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.triageUsecase.GetWaitlistSummary(r.Context())
	if err != nil {
		writeUsecaseError(w, err, "Failed to get waitlist summary")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist summary retrieved successfully", summary)
}
