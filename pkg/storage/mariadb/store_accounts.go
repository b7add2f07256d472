package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

// Patient profiles

const profileColumns = `id, user_id, first_name, last_name, email, phone, date_of_birth, gender, address,
	city, state, zip_code, emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
	blood_type, allergies, medications, medical_conditions, insurance_provider, insurance_policy_number,
	preferred_language, created_at, updated_at`

// detailFields lists the nullable detail columns in profileColumns order.
func detailFields(d *models.PatientDetails) []**string {
	return []**string{
		&d.DateOfBirth, &d.Gender, &d.Address, &d.City, &d.State, &d.ZipCode,
		&d.EmergencyContactName, &d.EmergencyContactPhone, &d.EmergencyContactRelation,
		&d.BloodType, &d.Allergies, &d.Medications, &d.MedicalConditions,
		&d.InsuranceProvider, &d.InsurancePolicyNumber,
	}
}

func scanProfile(row scanner) (models.PatientProfile, error) {
	var p models.PatientProfile
	var userID sql.NullString
	fields := detailFields(&p.PatientDetails)
	nulls := make([]sql.NullString, len(fields))

	dest := []interface{}{&p.ID, &userID, &p.FirstName, &p.LastName, &p.Email, &p.Phone}
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}
	dest = append(dest, &p.PreferredLanguage, &p.CreatedAt, &p.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return models.PatientProfile{}, err
	}
	p.UserID = stringPtr(userID)
	for i, f := range fields {
		*f = stringPtr(nulls[i])
	}
	return p, nil
}

func profileArgs(p models.PatientProfile) []interface{} {
	args := []interface{}{p.ID, nullString(p.UserID), p.FirstName, p.LastName, p.Email, p.Phone}
	for _, f := range detailFields(&p.PatientDetails) {
		args = append(args, nullString(*f))
	}
	return append(args, p.PreferredLanguage, p.CreatedAt, p.UpdatedAt)
}

func (s *Store) CreatePatientProfile(ctx context.Context, input models.NewPatientProfile) (models.PatientProfile, error) {
	now := s.now()
	p := models.PatientProfile{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		PatientDetails: input.PatientDetails,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.PreferredLanguage == "" {
		p.PreferredLanguage = "en"
	}
	_, err := s.DB.ExecContext(ctx, `INSERT INTO patient_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, profileArgs(p)...)
	if err != nil {
		return models.PatientProfile{}, fmt.Errorf("create patient profile: %w", mapError(err))
	}
	return p, nil
}

func (s *Store) GetPatientProfileByID(ctx context.Context, id string) (models.PatientProfile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM patient_profiles WHERE id = ?", id))
	if err != nil {
		return models.PatientProfile{}, fmt.Errorf("patient profile %s: %w", id, mapError(err))
	}
	return p, nil
}

func (s *Store) GetPatientProfileByUserID(ctx context.Context, userID string) (models.PatientProfile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM patient_profiles WHERE user_id = ?", userID))
	if err != nil {
		return models.PatientProfile{}, fmt.Errorf("patient profile for user %s: %w", userID, mapError(err))
	}
	return p, nil
}

func (s *Store) UpdatePatientProfileByUserID(ctx context.Context, userID string, patch models.PatientProfilePatch) (models.PatientProfile, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.PatientProfile{}, err
	}
	defer tx.Rollback()

	p, err := scanProfile(tx.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM patient_profiles WHERE user_id = ? FOR UPDATE", userID))
	if err != nil {
		return models.PatientProfile{}, fmt.Errorf("patient profile for user %s: %w", userID, mapError(err))
	}
	patch.Apply(&p.PatientDetails)
	p.UpdatedAt = s.now()

	// Rewrite every column; id, user_id and created_at are unchanged.
	_, err = tx.ExecContext(ctx, `
		UPDATE patient_profiles SET
			id = ?, user_id = ?, first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?, gender = ?,
			address = ?, city = ?, state = ?, zip_code = ?, emergency_contact_name = ?, emergency_contact_phone = ?,
			emergency_contact_relation = ?, blood_type = ?, allergies = ?, medications = ?, medical_conditions = ?,
			insurance_provider = ?, insurance_policy_number = ?, preferred_language = ?, created_at = ?, updated_at = ?
		WHERE id = ?`, append(profileArgs(p), p.ID)...)
	if err != nil {
		return models.PatientProfile{}, fmt.Errorf("update patient profile: %w", mapError(err))
	}
	if err := tx.Commit(); err != nil {
		return models.PatientProfile{}, err
	}
	return p, nil
}

// QR codes

const qrColumns = `id, patient_profile_id, qr_code_data, is_active, expires_at, created_at, last_scanned_at, scan_count`

func scanQRCode(row scanner) (models.PatientQRCode, error) {
	var q models.PatientQRCode
	var expiresAt, lastScannedAt sql.NullTime
	if err := row.Scan(&q.ID, &q.PatientProfileID, &q.QRCodeData, &q.IsActive, &expiresAt, &q.CreatedAt, &lastScannedAt, &q.ScanCount); err != nil {
		return models.PatientQRCode{}, err
	}
	q.ExpiresAt = timePtr(expiresAt)
	q.LastScannedAt = timePtr(lastScannedAt)
	return q, nil
}

func (s *Store) CreatePatientQRCode(ctx context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error) {
	return s.insertQRCode(ctx, s.DB, input)
}

// RotatePatientQRCode locks the profile's codes so concurrent rotations
// serialize and leave exactly one active code.
func (s *Store) RotatePatientQRCode(ctx context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.PatientQRCode{}, err
	}
	defer tx.Rollback()

	// The profile row is locked as well so a profile without codes still serializes.
	var profileID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM patient_profiles WHERE id = ? FOR UPDATE", input.PatientProfileID).Scan(&profileID)
	if err != nil {
		return models.PatientQRCode{}, fmt.Errorf("patient profile %s: %w", input.PatientProfileID, mapError(err))
	}
	rows, err := tx.QueryContext(ctx, "SELECT id FROM patient_qr_codes WHERE patient_profile_id = ? FOR UPDATE", input.PatientProfileID)
	if err != nil {
		return models.PatientQRCode{}, mapError(err)
	}
	if err := rows.Close(); err != nil {
		return models.PatientQRCode{}, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE patient_qr_codes SET is_active = FALSE WHERE patient_profile_id = ?", input.PatientProfileID); err != nil {
		return models.PatientQRCode{}, fmt.Errorf("deactivate qr codes: %w", mapError(err))
	}
	q, err := s.insertQRCode(ctx, tx, input)
	if err != nil {
		return models.PatientQRCode{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.PatientQRCode{}, err
	}
	return q, nil
}

func (s *Store) insertQRCode(ctx context.Context, db execer, input models.NewPatientQRCode) (models.PatientQRCode, error) {
	q := models.PatientQRCode{
		ID:               uuid.NewString(),
		PatientProfileID: input.PatientProfileID,
		QRCodeData:       input.QRCodeData,
		IsActive:         true,
		ExpiresAt:        input.ExpiresAt,
		CreatedAt:        s.now(),
	}
	_, err := db.ExecContext(ctx, "INSERT INTO patient_qr_codes ("+qrColumns+") VALUES (?, ?, ?, TRUE, ?, ?, NULL, 0)",
		q.ID, q.PatientProfileID, q.QRCodeData, nullTime(q.ExpiresAt), q.CreatedAt)
	if err != nil {
		return models.PatientQRCode{}, fmt.Errorf("create qr code: %w", mapError(err))
	}
	return q, nil
}

func (s *Store) GetActiveQRCodeByProfileID(ctx context.Context, profileID string) (models.PatientQRCode, error) {
	q, err := scanQRCode(s.DB.QueryRowContext(ctx,
		"SELECT "+qrColumns+" FROM patient_qr_codes WHERE patient_profile_id = ? AND is_active = TRUE ORDER BY seq DESC LIMIT 1", profileID))
	if err != nil {
		return models.PatientQRCode{}, fmt.Errorf("active qr code for profile %s: %w", profileID, mapError(err))
	}
	return q, nil
}

func (s *Store) IncrementQRCodeScanCount(ctx context.Context, id string, scannedAt time.Time) (models.PatientQRCode, error) {
	res, err := s.DB.ExecContext(ctx, "UPDATE patient_qr_codes SET scan_count = scan_count + 1, last_scanned_at = ? WHERE id = ?", scannedAt, id)
	if err != nil {
		return models.PatientQRCode{}, mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.PatientQRCode{}, fmt.Errorf("qr code %s: %w", id, storage.ErrNotFound)
	}
	q, err := scanQRCode(s.DB.QueryRowContext(ctx, "SELECT "+qrColumns+" FROM patient_qr_codes WHERE id = ?", id))
	if err != nil {
		return models.PatientQRCode{}, fmt.Errorf("qr code %s: %w", id, mapError(err))
	}
	return q, nil
}

func (s *Store) RecordQRCodeScan(ctx context.Context, input models.NewQRCodeScan) (models.QRCodeScan, error) {
	scan := models.QRCodeScan{
		ID:               uuid.NewString(),
		QRCodeID:         input.QRCodeID,
		ScannedByStaffID: input.ScannedByStaffID,
		ClinicID:         input.ClinicID,
		ScanResult:       input.ScanResult,
		ScanData:         input.ScanData,
		CreatedAt:        s.now(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO qr_code_scans (id, qr_code_id, scanned_by_staff_id, clinic_id, scan_result, scan_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.QRCodeID, scan.ScannedByStaffID, scan.ClinicID, scan.ScanResult, nullString(scan.ScanData), scan.CreatedAt)
	if err != nil {
		// the foreign key on qr_code_id reports a missing code as 1452
		err = mapError(err)
		if errors.Is(err, storage.ErrInvalidInput) {
			return models.QRCodeScan{}, fmt.Errorf("qr code %s: %w", input.QRCodeID, storage.ErrNotFound)
		}
		return models.QRCodeScan{}, fmt.Errorf("record qr scan: %w", err)
	}
	return scan, nil
}

// Clinic staff

func (s *Store) CreateClinicStaff(ctx context.Context, input models.NewClinicStaff) (models.ClinicStaff, error) {
	st := models.ClinicStaff{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		ClinicID:  input.ClinicID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Email:     input.Email,
		Phone:     emptyToNil(input.Phone),
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if input.IsActive != nil {
		st.IsActive = *input.IsActive
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO clinic_staff (id, user_id, clinic_id, first_name, last_name, role, email, phone, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.UserID, st.ClinicID, st.FirstName, st.LastName, st.Role, st.Email, nullString(st.Phone), st.IsActive, st.CreatedAt)
	if err != nil {
		return models.ClinicStaff{}, fmt.Errorf("create clinic staff: %w", mapError(err))
	}
	return st, nil
}

func (s *Store) GetClinicStaffByUserID(ctx context.Context, userID string) (models.ClinicStaff, error) {
	var st models.ClinicStaff
	var phone sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, clinic_id, first_name, last_name, role, email, phone, is_active, created_at
		FROM clinic_staff WHERE user_id = ? ORDER BY created_at LIMIT 1`, userID).
		Scan(&st.ID, &st.UserID, &st.ClinicID, &st.FirstName, &st.LastName, &st.Role, &st.Email, &phone, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return models.ClinicStaff{}, fmt.Errorf("clinic staff for user %s: %w", userID, mapError(err))
	}
	st.Phone = stringPtr(phone)
	return st, nil
}

// Ambulance requests

const ambulanceColumns = `id, patient_profile_id, emergency_type, urgency_level, patient_name, patient_age,
	contact_phone, pickup_address, city, state, zip_code, destination_hospital, symptoms, special_requirements,
	has_insurance, insurance_provider, status, estimated_arrival, dispatched_at, arrived_at, completed_at, created_at`

func scanAmbulance(row scanner) (models.AmbulanceRequest, error) {
	var r models.AmbulanceRequest
	var profileID, destination, special, insurer, eta sql.NullString
	var dispatchedAt, arrivedAt, completedAt sql.NullTime
	err := row.Scan(&r.ID, &profileID, &r.EmergencyType, &r.UrgencyLevel, &r.PatientName, &r.PatientAge,
		&r.ContactPhone, &r.PickupAddress, &r.City, &r.State, &r.ZipCode, &destination, &r.Symptoms, &special,
		&r.HasInsurance, &insurer, &r.Status, &eta, &dispatchedAt, &arrivedAt, &completedAt, &r.CreatedAt)
	if err != nil {
		return models.AmbulanceRequest{}, err
	}
	r.PatientProfileID = stringPtr(profileID)
	r.DestinationHospital = stringPtr(destination)
	r.SpecialRequirements = stringPtr(special)
	r.InsuranceProvider = stringPtr(insurer)
	r.EstimatedArrival = stringPtr(eta)
	r.DispatchedAt = timePtr(dispatchedAt)
	r.ArrivedAt = timePtr(arrivedAt)
	r.CompletedAt = timePtr(completedAt)
	return r, nil
}

func (s *Store) CreateAmbulanceRequest(ctx context.Context, input models.NewAmbulanceRequest) (models.AmbulanceRequest, error) {
	r := models.AmbulanceRequest{
		ID:               uuid.NewString(),
		PatientProfileID: input.PatientProfileID,
		AmbulanceDetails: input.AmbulanceDetails,
		Status:           input.Status,
		EstimatedArrival: input.EstimatedArrival,
		CreatedAt:        s.now(),
	}
	if r.Status == "" {
		r.Status = models.AmbulanceRequested
	}
	_, err := s.DB.ExecContext(ctx, `INSERT INTO ambulance_requests (`+ambulanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, ?)`,
		r.ID, nullString(r.PatientProfileID), r.EmergencyType, r.UrgencyLevel, r.PatientName, r.PatientAge,
		r.ContactPhone, r.PickupAddress, r.City, r.State, r.ZipCode, nullString(r.DestinationHospital), r.Symptoms,
		nullString(r.SpecialRequirements), r.HasInsurance, nullString(r.InsuranceProvider), r.Status,
		nullString(r.EstimatedArrival), r.CreatedAt)
	if err != nil {
		return models.AmbulanceRequest{}, fmt.Errorf("create ambulance request: %w", mapError(err))
	}
	return r, nil
}

func (s *Store) GetAmbulanceRequests(ctx context.Context) ([]models.AmbulanceRequest, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+ambulanceColumns+" FROM ambulance_requests ORDER BY created_at DESC, seq DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AmbulanceRequest, 0)
	for rows.Next() {
		r, err := scanAmbulance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetAmbulanceRequestByID(ctx context.Context, id string) (models.AmbulanceRequest, error) {
	r, err := scanAmbulance(s.DB.QueryRowContext(ctx, "SELECT "+ambulanceColumns+" FROM ambulance_requests WHERE id = ?", id))
	if err != nil {
		return models.AmbulanceRequest{}, fmt.Errorf("ambulance request %s: %w", id, mapError(err))
	}
	return r, nil
}

func (s *Store) UpdateAmbulanceRequestStatus(ctx context.Context, id, status string, estimatedArrival *string, at time.Time) (models.AmbulanceRequest, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.AmbulanceRequest{}, err
	}
	defer tx.Rollback()

	r, err := scanAmbulance(tx.QueryRowContext(ctx, "SELECT "+ambulanceColumns+" FROM ambulance_requests WHERE id = ? FOR UPDATE", id))
	if err != nil {
		return models.AmbulanceRequest{}, fmt.Errorf("ambulance request %s: %w", id, mapError(err))
	}
	storage.StampAmbulanceStatus(&r, status, at)
	if estimatedArrival != nil {
		eta := *estimatedArrival
		r.EstimatedArrival = &eta
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ambulance_requests
		SET status = ?, estimated_arrival = ?, dispatched_at = ?, arrived_at = ?, completed_at = ?
		WHERE id = ?`,
		r.Status, nullString(r.EstimatedArrival), nullTime(r.DispatchedAt), nullTime(r.ArrivedAt), nullTime(r.CompletedAt), id)
	if err != nil {
		return models.AmbulanceRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.AmbulanceRequest{}, err
	}
	return r, nil
}
