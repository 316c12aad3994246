package dto

import "time"

// Request DTOs

type AddPatientRequest struct {
	Code       string `json:"code" validate:"required,patientcode"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	InjuryType string `json:"injury_type" validate:"required,oneof=head chest abdomen neck back arm leg burn bleeding allergic other"`
	PainLevel  *int   `json:"pain_level" validate:"required,gte=0,lte=10"`
	Notes      string `json:"notes" validate:"max=500"`
}

type ChangePriorityRequest struct {
	NewPriorityID int    `json:"new_priority_id" validate:"required,gte=1,lte=4"`
	Notes         string `json:"notes" validate:"max=500"`
}

type RemovePatientRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type AttentionRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// ReassessRequest carries an updated pain report. Code must match the
// patient's code so a waiting patient can only reassess their own entry.
type ReassessRequest struct {
	Code      string `json:"code" validate:"required,patientcode"`
	PainLevel *int   `json:"pain_level" validate:"required,gte=0,lte=10"`
	Notes     string `json:"notes" validate:"max=500"`
}

type PatientStatusRequest struct {
	Code string `json:"code" validate:"required,patientcode"`
}

// Response DTOs

type PatientResponse struct {
	PatientID         int64     `json:"patient_id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	InjuryType        string    `json:"injury_type"`
	PainLevel         int       `json:"pain_level"`
	ArrivalTime       time.Time `json:"arrival_time"`
	PriorityID        int       `json:"priority_id"`
	PriorityLevel     string    `json:"priority_level"`
	EstimatedWaitTime int       `json:"estimated_wait_time"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}

// PriorityChangeResponse is returned by priority mutations. Changed is false
// when an increase/decrease request was already at the bound; then no
// action log entry was written and ActionLog is nil.
type PriorityChangeResponse struct {
	Changed   bool               `json:"changed"`
	Patient   PatientResponse    `json:"patient"`
	ActionLog *ActionLogResponse `json:"action_log,omitempty"`
}

type PatientStatusResponse struct {
	Patient           PatientResponse `json:"patient"`
	QueuePosition     int             `json:"queue_position"`
	PatientsAhead     int             `json:"patients_ahead"`
	PriorityLevel     string          `json:"priority_level"`
	EstimatedWaitTime int             `json:"estimated_wait_time"`
}

type PatientStatusListResponse struct {
	Statuses []PatientStatusResponse `json:"statuses"`
	Total    int                     `json:"total"`
}

type PriorityCountResponse struct {
	PriorityID int    `json:"priority_id"`
	LevelName  string `json:"level_name"`
	Count      int64  `json:"count"`
}

type WaitlistSummaryResponse struct {
	Total      int64                   `json:"total"`
	ByPriority []PriorityCountResponse `json:"by_priority"`
}
