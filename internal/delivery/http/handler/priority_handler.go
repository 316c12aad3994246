package handler

import (
	"net/http"

	"triage-waitlist/internal/usecase"
	"triage-waitlist/pkg/response"
)

type PriorityHandler struct {
	priorityUsecase usecase.PriorityUsecase
}

func NewPriorityHandler(priorityUsecase usecase.PriorityUsecase) *PriorityHandler {
	return &PriorityHandler{
		priorityUsecase: priorityUsecase,
	}
}

func (h *PriorityHandler) GetAllPriorities(w http.ResponseWriter, r *http.Request) {
	priorities, err := h.priorityUsecase.GetAllPriorities(r.Context())
	if err != nil {
		writeUsecaseError(w, err, "Failed to get priorities")
		return
	}

	response.Success(w, http.StatusOK, "Priorities retrieved successfully", priorities)
}
