package entity

import (
	"time"
)

// Patient represents a patient currently on the waitlist
type Patient struct {
	ID          int64     `gorm:"column:patient_id;primaryKey;autoIncrement" json:"patient_id"`
	Code        string    `gorm:"type:char(3);not null;index" json:"code"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	InjuryType  string    `gorm:"type:varchar(20);not null" json:"injury_type"`
	PainLevel   int       `gorm:"not null" json:"pain_level"`
	ArrivalTime time.Time `gorm:"not null" json:"arrival_time"`
	PriorityID  int       `gorm:"not null;index" json:"priority_id"`
}

func (Patient) TableName() string {
	return "patients"
}

// Injury type categories
const (
	InjuryHead     = "head"
	InjuryChest    = "chest"
	InjuryAbdomen  = "abdomen"
	InjuryNeck     = "neck"
	InjuryBack     = "back"
	InjuryArm      = "arm"
	InjuryLeg      = "leg"
	InjuryBurn     = "burn"
	InjuryBleeding = "bleeding"
	InjuryAllergic = "allergic"
	InjuryOther    = "other"
)

// InjuryTypes lists every accepted injury category
var InjuryTypes = []string{
	InjuryHead, InjuryChest, InjuryAbdomen, InjuryNeck, InjuryBack, InjuryArm,
	InjuryLeg, InjuryBurn, InjuryBleeding, InjuryAllergic, InjuryOther,
}

// Pain level bounds
const (
	MinPainLevel = 0
	MaxPainLevel = 10
)

// WaitsBefore reports whether p is served before other in the waitlist:
// lower priority_id first, then earlier arrival, then lower id.
func (p *Patient) WaitsBefore(other *Patient) bool {
	if p.PriorityID != other.PriorityID {
		return p.PriorityID < other.PriorityID
	}
	if !p.ArrivalTime.Equal(other.ArrivalTime) {
		return p.ArrivalTime.Before(other.ArrivalTime)
	}
	return p.ID < other.ID
}
