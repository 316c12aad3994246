package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ActionType enumerates the mutations recorded in the action log
type ActionType string

const (
	ActionTypeAddPatient     ActionType = "Add Patient"
	ActionTypeChangePriority ActionType = "Change Priority"
	ActionTypeRemovePatient  ActionType = "Remove Patient"
)

// ActionLog is an immutable audit record of one waitlist mutation.
// PatientID is a weak reference: the patient may have been removed.
type ActionLog struct {
	ID              int64                               `gorm:"column:action_id;primaryKey;autoIncrement" json:"action_id"`
	PatientID       int64                               `gorm:"not null;index" json:"patient_id"`
	ActionType      ActionType                          `gorm:"type:varchar(30);not null;index" json:"action_type"`
	OldPriorityID   *int                                `json:"old_priority_id"`
	NewPriorityID   *int                                `json:"new_priority_id"`
	ActionTimestamp time.Time                           `gorm:"not null;index" json:"action_timestamp"`
	Notes           string                              `gorm:"type:text;not null;default:''" json:"notes"`
	PerformedBy     *string                             `gorm:"type:varchar(100)" json:"performed_by,omitempty"`
	PatientSnapshot datatypes.JSONType[PatientSnapshot] `gorm:"type:jsonb" json:"patient_snapshot"`
}

func (ActionLog) TableName() string {
	return "action_logs"
}

// PatientSnapshot captures patient identity at the time an entry is written
type PatientSnapshot struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	InjuryType  string    `json:"injury_type"`
	PainLevel   int       `json:"pain_level"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// SnapshotOf builds a PatientSnapshot from p
func SnapshotOf(p *Patient) PatientSnapshot {
	return PatientSnapshot{
		Code:        p.Code,
		Name:        p.Name,
		InjuryType:  p.InjuryType,
		PainLevel:   p.PainLevel,
		ArrivalTime: p.ArrivalTime,
	}
}

// Default notes per action type
const (
	DefaultNotesAddPatient     = "Patient checked in via triage form"
	DefaultNotesChangePriority = "Priority changed by admin"
	DefaultNotesRemovePatient  = "Patient removed from waitlist"
)

// Actor labels recorded when no staff identity is attached to the request
const (
	ActorSelfRegistration = "self-registration"
	ActorSelfReassessment = "self-reassessment"
)
