package models

import "time"

// AttendanceStatus is the per-registration attendance state. Absence of an
// AttendanceRecord row means absent.
type AttendanceStatus string

const (
	StatusAbsent   AttendanceStatus = "absent"
	StatusAttended AttendanceStatus = "attended"
)

// AttendanceRecord is the 1:1 attendance state for a registration. Scans only
// move absent to attended; the bulk admin path may set either status.
type AttendanceRecord struct {
	RegistrationID string           `json:"registrationId"`
	EventID        string           `json:"eventId"`
	Status         AttendanceStatus `json:"status"`
	MarkedAt       time.Time        `json:"markedAt"`
	MarkedBy       string           `json:"markedBy"`
}
