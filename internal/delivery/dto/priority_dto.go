package dto

// Response DTOs

type PriorityResponse struct {
	PriorityID        int    `json:"priority_id"`
	LevelName         string `json:"level_name"`
	Description       string `json:"description"`
	ColorCode         string `json:"color_code"`
	EstimatedWaitTime int    `json:"estimated_wait_time"`
}

type PriorityListResponse struct {
	Priorities []PriorityResponse `json:"priorities"`
	Total      int                `json:"total"`
}
