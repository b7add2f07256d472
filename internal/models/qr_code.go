package models

import "time"

// PatientQRCode holds the payload rendered into a patient's check-in code.
type PatientQRCode struct {
	ID               string     `json:"id"`
	PatientProfileID string     `json:"patientProfileId"`
	QRCodeData       string     `json:"qrCodeData"`
	IsActive         bool       `json:"isActive"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastScannedAt    *time.Time `json:"lastScannedAt"`
	ScanCount        int        `json:"scanCount"`
}

// Expired reports whether the code has an expiry that lies before now.
func (q PatientQRCode) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

type NewPatientQRCode struct {
	PatientProfileID string
	QRCodeData       string
	ExpiresAt        *time.Time
}

// QRCodeScan records one scan of a patient code by clinic staff.
type QRCodeScan struct {
	ID               string    `json:"id"`
	QRCodeID         string    `json:"qrCodeId"`
	ScannedByStaffID string    `json:"scannedByStaffId"`
	ClinicID         string    `json:"clinicId"`
	ScanResult       string    `json:"scanResult"`
	ScanData         *string   `json:"scanData"`
	CreatedAt        time.Time `json:"createdAt"`
}

const (
	ScanResultSuccess = "success"
	ScanResultError   = "error"
	ScanResultExpired = "expired"
)

type NewQRCodeScan struct {
	QRCodeID         string
	ScannedByStaffID string
	ClinicID         string
	ScanResult       string
	ScanData         *string
}
