package entity

// Priority is one of the four static triage tiers
type Priority struct {
	ID                int    `gorm:"column:priority_id;primaryKey" json:"priority_id"`
	LevelName         string `gorm:"type:varchar(20);not null" json:"level_name"`
	Description       string `gorm:"type:text;not null" json:"description"`
	ColorCode         string `gorm:"type:varchar(7);not null" json:"color_code"`
	EstimatedWaitTime int    `gorm:"not null" json:"estimated_wait_time"`
}

func (Priority) TableName() string {
	return "priorities"
}

// Priority tier IDs, 1 is the most urgent
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4

	MostUrgentPriority  = PriorityCritical
	LeastUrgentPriority = PriorityLow
)

// DefaultPriorities mirrors the rows seeded by the initial migration.
var DefaultPriorities = []Priority{
	{ID: PriorityCritical, LevelName: "Critical", Description: "Immediate attention required", ColorCode: "#B10000", EstimatedWaitTime: 0},
	{ID: PriorityHigh, LevelName: "High", Description: "Attention within 15 minutes", ColorCode: "#FF4444", EstimatedWaitTime: 15},
	{ID: PriorityMedium, LevelName: "Medium", Description: "Attention within 30 minutes", ColorCode: "#FFD700", EstimatedWaitTime: 30},
	{ID: PriorityLow, LevelName: "Low", Description: "Attention within 60 minutes", ColorCode: "#3CB371", EstimatedWaitTime: 60},
}

// ClassifyPainLevel maps a reported pain level to a priority tier.
// Values outside 0..10 are not rejected here.
func ClassifyPainLevel(painLevel int) int {
	switch {
	case painLevel >= 8:
		return PriorityCritical
	case painLevel >= 5:
		return PriorityHigh
	case painLevel >= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// IsValidPriorityID reports whether id names one of the four tiers
func IsValidPriorityID(id int) bool {
	return id >= MostUrgentPriority && id <= LeastUrgentPriority
}

// PriorityLevelName returns the tier name for id, or "Unknown"
func PriorityLevelName(id int) string {
	for _, p := range DefaultPriorities {
		if p.ID == id {
			return p.LevelName
		}
	}
	return "Unknown"
}

// EscalatedPriority returns the next more urgent tier, clamped at Critical
func EscalatedPriority(current int) int {
	return max(MostUrgentPriority, current-1)
}

// DeescalatedPriority returns the next less urgent tier, clamped at Low
func DeescalatedPriority(current int) int {
	return min(LeastUrgentPriority, current+1)
}
