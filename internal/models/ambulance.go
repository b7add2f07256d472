package models

import "time"

// AmbulanceRequest is an emergency transport request.
type AmbulanceRequest struct {
	ID               string  `json:"id"`
	PatientProfileID *string `json:"patientProfileId"`
	AmbulanceDetails
	Status           string     `json:"status"`
	EstimatedArrival *string    `json:"estimatedArrival"`
	DispatchedAt     *time.Time `json:"dispatchedAt"`
	ArrivedAt        *time.Time `json:"arrivedAt"`
	CompletedAt      *time.Time `json:"completedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// AmbulanceDetails are the fields filled in on the request form.
type AmbulanceDetails struct {
	EmergencyType       string  `json:"emergencyType"`
	UrgencyLevel        string  `json:"urgencyLevel"`
	PatientName         string  `json:"patientName"`
	PatientAge          string  `json:"patientAge"`
	ContactPhone        string  `json:"contactPhone"`
	PickupAddress       string  `json:"pickupAddress"`
	City                string  `json:"city"`
	State               string  `json:"state"`
	ZipCode             string  `json:"zipCode"`
	DestinationHospital *string `json:"destinationHospital"`
	Symptoms            string  `json:"symptoms"`
	SpecialRequirements *string `json:"specialRequirements"`
	HasInsurance        string  `json:"hasInsurance"`
	InsuranceProvider   *string `json:"insuranceProvider"`
}

const (
	AmbulanceRequested  = "requested"
	AmbulanceDispatched = "dispatched"
	AmbulanceEnRoute    = "en_route"
	AmbulanceArrived    = "arrived"
	AmbulanceCompleted  = "completed"
	AmbulanceCancelled  = "cancelled"
)

func ValidAmbulanceStatus(status string) bool {
	switch status {
	case AmbulanceRequested, AmbulanceDispatched, AmbulanceEnRoute,
		AmbulanceArrived, AmbulanceCompleted, AmbulanceCancelled:
		return true
	}
	return false
}

type NewAmbulanceRequest struct {
	PatientProfileID *string `json:"patientProfileId"`
	AmbulanceDetails
	Status           string  `json:"status"`
	EstimatedArrival *string `json:"estimatedArrival"`
}
