package handler

import (
	"net/http"

	"triage-waitlist/internal/usecase"
	"triage-waitlist/pkg/response"
)

type ActionLogHandler struct {
	actionLogUsecase usecase.ActionLogUsecase
}

func NewActionLogHandler(actionLogUsecase usecase.ActionLogUsecase) *ActionLogHandler {
	return &ActionLogHandler{
		actionLogUsecase: actionLogUsecase,
	}
}

func (h *ActionLogHandler) GetAllActionLogs(w http.ResponseWriter, r *http.Request) {
	actionLogs, err := h.actionLogUsecase.GetAllActionLogs(r.Context())
	if err != nil {
		writeUsecaseError(w, err, "Failed to get action logs")
		return
	}

	response.Success(w, http.StatusOK, "Action logs retrieved successfully", actionLogs)
}

func (h *ActionLogHandler) GetPatientActionLogs(w http.ResponseWriter, r *http.Request) {
	patientID, ok := patientIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	actionLogs, err := h.actionLogUsecase.GetPatientActionLogs(r.Context(), patientID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get action logs")
		return
	}

	response.Success(w, http.StatusOK, "Action logs retrieved successfully", actionLogs)
}
