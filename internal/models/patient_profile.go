package models

import "time"

// PatientDetails are the personal and medical fields of a profile.
type PatientDetails struct {
	FirstName                string  `json:"firstName"`
	LastName                 string  `json:"lastName"`
	Email                    string  `json:"email"`
	Phone                    string  `json:"phone"`
	DateOfBirth              *string `json:"dateOfBirth"`
	Gender                   *string `json:"gender"`
	Address                  *string `json:"address"`
	City                     *string `json:"city"`
	State                    *string `json:"state"`
	ZipCode                  *string `json:"zipCode"`
	EmergencyContactName     *string `json:"emergencyContactName"`
	EmergencyContactPhone    *string `json:"emergencyContactPhone"`
	EmergencyContactRelation *string `json:"emergencyContactRelation"`
	BloodType                *string `json:"bloodType"`
	Allergies                *string `json:"allergies"`
	Medications              *string `json:"medications"`
	MedicalConditions        *string `json:"medicalConditions"`
	InsuranceProvider        *string `json:"insuranceProvider"`
	InsurancePolicyNumber    *string `json:"insurancePolicyNumber"`
	PreferredLanguage        string  `json:"preferredLanguage"`
}

// PatientProfile is the full patient record owned by a user account.
type PatientProfile struct {
	ID     string  `json:"id"`
	UserID *string `json:"userId"`
	PatientDetails
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewPatientProfile struct {
	UserID *string `json:"userId"`
	PatientDetails
}

// PatientProfilePatch updates only the fields that are present.
type PatientProfilePatch struct {
	FirstName                *string `json:"firstName"`
	LastName                 *string `json:"lastName"`
	Email                    *string `json:"email"`
	Phone                    *string `json:"phone"`
	DateOfBirth              *string `json:"dateOfBirth"`
	Gender                   *string `json:"gender"`
	Address                  *string `json:"address"`
	City                     *string `json:"city"`
	State                    *string `json:"state"`
	ZipCode                  *string `json:"zipCode"`
	EmergencyContactName     *string `json:"emergencyContactName"`
	EmergencyContactPhone    *string `json:"emergencyContactPhone"`
	EmergencyContactRelation *string `json:"emergencyContactRelation"`
	BloodType                *string `json:"bloodType"`
	Allergies                *string `json:"allergies"`
	Medications              *string `json:"medications"`
	MedicalConditions        *string `json:"medicalConditions"`
	InsuranceProvider        *string `json:"insuranceProvider"`
	InsurancePolicyNumber    *string `json:"insurancePolicyNumber"`
	PreferredLanguage        *string `json:"preferredLanguage"`
}

func (p PatientProfilePatch) Apply(d *PatientDetails) {
	setString(&d.FirstName, p.FirstName)
	setString(&d.LastName, p.LastName)
	setString(&d.Email, p.Email)
	setString(&d.Phone, p.Phone)
	setString(&d.PreferredLanguage, p.PreferredLanguage)
	setOptional(&d.DateOfBirth, p.DateOfBirth)
	setOptional(&d.Gender, p.Gender)
	setOptional(&d.Address, p.Address)
	setOptional(&d.City, p.City)
	setOptional(&d.State, p.State)
	setOptional(&d.ZipCode, p.ZipCode)
	setOptional(&d.EmergencyContactName, p.EmergencyContactName)
	setOptional(&d.EmergencyContactPhone, p.EmergencyContactPhone)
	setOptional(&d.EmergencyContactRelation, p.EmergencyContactRelation)
	setOptional(&d.BloodType, p.BloodType)
	setOptional(&d.Allergies, p.Allergies)
	setOptional(&d.Medications, p.Medications)
	setOptional(&d.MedicalConditions, p.MedicalConditions)
	setOptional(&d.InsuranceProvider, p.InsuranceProvider)
	setOptional(&d.InsurancePolicyNumber, p.InsurancePolicyNumber)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setOptional(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}
