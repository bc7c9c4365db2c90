package models

import (
	"encoding/json"
	"time"
)

// ScanResult classifies a scan attempt for the audit log.
type ScanResult string

const (
	ScanSuccess   ScanResult = "success"
	ScanDuplicate ScanResult = "duplicate"
	ScanInvalid   ScanResult = "invalid"
)

// ScanLogEntry is one append-only audit row. Every scan attempt writes
// exactly one, valid or not. RegistrationID is nil when the payload did not
// carry a usable one.
type ScanLogEntry struct {
	ID             int64           `json:"id"`
	RegistrationID *string         `json:"registrationId,omitempty"`
	EventID        string          `json:"eventId"`
	ScannedBy      string          `json:"scannedBy"`
	Result         ScanResult      `json:"result"`
	ScannerInfo    json.RawMessage `json:"scannerInfo,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}
