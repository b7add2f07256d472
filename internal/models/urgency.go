package models

const (
	UrgencyCritical   = "critical"
	UrgencyUrgent     = "urgent"
	UrgencySemiUrgent = "semi-urgent"
)

// DefaultEstimateMinutes applies to any urgency not in the table.
const DefaultEstimateMinutes = 10

// EstimateMinutes is the static response time table used for queue
// estimates and ambulance ETAs.
func EstimateMinutes(urgency string) int {
	switch urgency {
	case UrgencyCritical:
		return 4
	case UrgencyUrgent:
		return 8
	case UrgencySemiUrgent:
		return 12
	}
	return DefaultEstimateMinutes
}
