package dto

import "time"

// Response DTOs

type PatientSnapshotResponse struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	InjuryType  string    `json:"injury_type"`
	PainLevel   int       `json:"pain_level"`
	ArrivalTime time.Time `json:"arrival_time"`
}

type ActionLogResponse struct {
	ActionID        int64                   `json:"action_id"`
	PatientID       int64                   `json:"patient_id"`
	ActionType      string                  `json:"action_type"`
	OldPriorityID   *int                    `json:"old_priority_id"`
	NewPriorityID   *int                    `json:"new_priority_id"`
	ActionTimestamp time.Time               `json:"action_timestamp"`
	Notes           string                  `json:"notes"`
	PerformedBy     *string                 `json:"performed_by,omitempty"`
	Patient         PatientSnapshotResponse `json:"patient"`
}

type ActionLogListResponse struct {
	Logs  []ActionLogResponse `json:"logs"`
	Total int                 `json:"total"`
}
