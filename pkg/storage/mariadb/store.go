package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/c14220110/findmyclinic-backend/internal/models"
)

// Users

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, "SELECT id, username, password FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", id, mapError(err))
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, "SELECT id, username, password FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("user %q: %w", username, mapError(err))
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	u := models.User{ID: uuid.NewString(), Username: username, Password: passwordHash}
	_, err := s.DB.ExecContext(ctx, "INSERT INTO users (id, username, password) VALUES (?, ?, ?)", u.ID, u.Username, u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("create user %q: %w", username, mapError(err))
	}
	return u, nil
}

// Clinics

const clinicColumns = `id, name, address, area, phone, email, latitude, longitude,
	current_wait_time, queue_size, status, is_active, created_at`

func scanClinic(row scanner) (models.Clinic, error) {
	var c models.Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Area, &c.Phone, &c.Email, &c.Latitude, &c.Longitude,
		&c.CurrentWaitTime, &c.QueueSize, &c.Status, &c.IsActive, &c.CreatedAt)
	return c, err
}

func (s *Store) queryClinics(ctx context.Context, query string, args ...interface{}) ([]models.Clinic, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clinics := make([]models.Clinic, 0)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, c)
	}
	return clinics, rows.Err()
}

func (s *Store) GetClinics(ctx context.Context) ([]models.Clinic, error) {
	return s.queryClinics(ctx, "SELECT "+clinicColumns+" FROM clinics WHERE is_active = TRUE ORDER BY seq")
}

func (s *Store) GetClinic(ctx context.Context, id string) (models.Clinic, error) {
	c, err := scanClinic(s.DB.QueryRowContext(ctx, "SELECT "+clinicColumns+" FROM clinics WHERE id = ?", id))
	if err != nil {
		return models.Clinic{}, fmt.Errorf("clinic %s: %w", id, mapError(err))
	}
	return c, nil
}

func (s *Store) CreateClinic(ctx context.Context, input models.NewClinic) (models.Clinic, error) {
	c := models.Clinic{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Address:   input.Address,
		Area:      input.Area,
		Phone:     input.Phone,
		Email:     input.Email,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Status:    models.ClinicStatusOpen,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO clinics
			(id, name, address, area, phone, email, latitude, longitude, current_wait_time, queue_size, status, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, TRUE, ?)`,
		c.ID, c.Name, c.Address, c.Area, c.Phone, c.Email, c.Latitude, c.Longitude, c.Status, c.CreatedAt,
	)
	if err != nil {
		return models.Clinic{}, fmt.Errorf("create clinic: %w", mapError(err))
	}
	return c, nil
}

func (s *Store) UpdateClinic(ctx context.Context, id string, update models.ClinicUpdate) (models.Clinic, error) {
	var sets []string
	var args []interface{}
	if update.CurrentWaitTime != nil {
		sets = append(sets, "current_wait_time = ?")
		args = append(args, *update.CurrentWaitTime)
	}
	if update.QueueSize != nil {
		sets = append(sets, "queue_size = ?")
		args = append(args, *update.QueueSize)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}
	if update.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *update.IsActive)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := s.DB.ExecContext(ctx, "UPDATE clinics SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return models.Clinic{}, fmt.Errorf("update clinic %s: %w", id, mapError(err))
		}
	}
	// RowsAffected is 0 for an unchanged row too, so existence is checked
	// by reading it back.
	return s.GetClinic(ctx, id)
}

func (s *Store) AdjustClinicQueueSize(ctx context.Context, id string, delta int) (models.Clinic, error) {
	_, err := s.DB.ExecContext(ctx, "UPDATE clinics SET queue_size = GREATEST(queue_size + ?, 0) WHERE id = ?", delta, id)
	if err != nil {
		return models.Clinic{}, fmt.Errorf("adjust queue size %s: %w", id, mapError(err))
	}
	return s.GetClinic(ctx, id)
}

func (s *Store) SearchClinics(ctx context.Context, query models.ClinicQuery) ([]models.Clinic, error) {
	where := []string{"is_active = TRUE"}
	var args []interface{}
	if term := strings.TrimSpace(query.Search); term != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(address) LIKE ?)")
		p := likePattern(term)
		args = append(args, p, p)
	}
	if area := strings.TrimSpace(query.Area); area != "" {
		where = append(where, "(LOWER(area) = ? OR LOWER(address) LIKE ?)")
		args = append(args, strings.ToLower(area), likePattern(area))
	}
	return s.queryClinics(ctx, "SELECT "+clinicColumns+" FROM clinics WHERE "+strings.Join(where, " AND ")+" ORDER BY seq", args...)
}

// Patients

func scanPatient(row scanner) (models.Patient, error) {
	var p models.Patient
	var email sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &email, &p.CreatedAt); err != nil {
		return models.Patient{}, err
	}
	p.Email = stringPtr(email)
	return p, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (models.Patient, error) {
	p, err := scanPatient(s.DB.QueryRowContext(ctx, "SELECT id, name, phone, email, created_at FROM patients WHERE id = ?", id))
	if err != nil {
		return models.Patient{}, fmt.Errorf("patient %s: %w", id, mapError(err))
	}
	return p, nil
}

func (s *Store) GetPatientByPhone(ctx context.Context, phone string) (models.Patient, error) {
	p, err := scanPatient(s.DB.QueryRowContext(ctx,
		"SELECT id, name, phone, email, created_at FROM patients WHERE phone = ? ORDER BY created_at LIMIT 1", phone))
	if err != nil {
		return models.Patient{}, fmt.Errorf("patient with phone %q: %w", phone, mapError(err))
	}
	return p, nil
}

func (s *Store) CreatePatient(ctx context.Context, input models.NewPatient) (models.Patient, error) {
	p := models.Patient{ID: uuid.NewString(), Name: input.Name, Phone: input.Phone, Email: emptyToNil(input.Email), CreatedAt: s.now()}
	_, err := s.DB.ExecContext(ctx, "INSERT INTO patients (id, name, phone, email, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Phone, nullString(p.Email), p.CreatedAt)
	if err != nil {
		return models.Patient{}, fmt.Errorf("create patient: %w", mapError(err))
	}
	return p, nil
}

// Queue tokens

const tokenColumns = `id, clinic_id, patient_id, token_number, status, estimated_wait_time, created_at, called_at, completed_at`

func scanToken(row scanner) (models.QueueToken, error) {
	var t models.QueueToken
	var wait sql.NullInt64
	var calledAt, completedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.ClinicID, &t.PatientID, &t.TokenNumber, &t.Status, &wait, &t.CreatedAt, &calledAt, &completedAt); err != nil {
		return models.QueueToken{}, err
	}
	t.EstimatedWaitTime = intPtr(wait)
	t.CalledAt = timePtr(calledAt)
	t.CompletedAt = timePtr(completedAt)
	return t, nil
}

func (s *Store) GetQueueTokens(ctx context.Context, clinicID string) ([]models.QueueToken, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+tokenColumns+" FROM queue_tokens WHERE clinic_id = ? ORDER BY token_number", clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]models.QueueToken, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *Store) GetQueueToken(ctx context.Context, id string) (models.QueueToken, error) {
	t, err := scanToken(s.DB.QueryRowContext(ctx, "SELECT "+tokenColumns+" FROM queue_tokens WHERE id = ?", id))
	if err != nil {
		return models.QueueToken{}, fmt.Errorf("queue token %s: %w", id, mapError(err))
	}
	return t, nil
}

// CreateQueueToken locks the clinic row so numbering is serialised per
// clinic, then inserts the token and bumps the clinic counters.
func (s *Store) CreateQueueToken(ctx context.Context, input models.NewQueueToken) (models.QueueToken, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.QueueToken{}, err
	}
	defer tx.Rollback()

	var currentWait int
	err = tx.QueryRowContext(ctx, "SELECT current_wait_time FROM clinics WHERE id = ? FOR UPDATE", input.ClinicID).Scan(&currentWait)
	if err != nil {
		return models.QueueToken{}, fmt.Errorf("clinic %s: %w", input.ClinicID, mapError(err))
	}

	var maxNumber int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(token_number), 0) FROM queue_tokens WHERE clinic_id = ?", input.ClinicID).Scan(&maxNumber)
	if err != nil {
		return models.QueueToken{}, err
	}

	status := input.Status
	if status == "" {
		status = models.TokenStatusWaiting
	}
	t := models.QueueToken{
		ID:          uuid.NewString(),
		ClinicID:    input.ClinicID,
		PatientID:   input.PatientID,
		TokenNumber: maxNumber + 1,
		Status:      status,
		CreatedAt:   s.now(),
	}
	if input.EstimatedWaitTime != nil && *input.EstimatedWaitTime != 0 {
		w := *input.EstimatedWaitTime
		t.EstimatedWaitTime = &w
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO queue_tokens ("+tokenColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL)",
		t.ID, t.ClinicID, t.PatientID, t.TokenNumber, t.Status, nullInt(t.EstimatedWaitTime), t.CreatedAt)
	if err != nil {
		return models.QueueToken{}, fmt.Errorf("create queue token: %w", mapError(err))
	}

	wait := 0
	if t.EstimatedWaitTime != nil {
		wait = *t.EstimatedWaitTime
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE clinics SET queue_size = queue_size + 1, current_wait_time = GREATEST(current_wait_time, ?) WHERE id = ?",
		wait, t.ClinicID)
	if err != nil {
		return models.QueueToken{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.QueueToken{}, err
	}
	return t, nil
}

func (s *Store) UpdateQueueToken(ctx context.Context, id string, update models.QueueTokenUpdate) (models.QueueToken, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.QueueToken{}, err
	}
	defer tx.Rollback()

	t, err := scanToken(tx.QueryRowContext(ctx, "SELECT "+tokenColumns+" FROM queue_tokens WHERE id = ? FOR UPDATE", id))
	if err != nil {
		return models.QueueToken{}, fmt.Errorf("queue token %s: %w", id, mapError(err))
	}
	update.Apply(&t)

	_, err = tx.ExecContext(ctx, "UPDATE queue_tokens SET status = ?, called_at = ?, completed_at = ? WHERE id = ?",
		t.Status, nullTime(t.CalledAt), nullTime(t.CompletedAt), id)
	if err != nil {
		return models.QueueToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.QueueToken{}, err
	}
	return t, nil
}

func (s *Store) GetNextTokenNumber(ctx context.Context, clinicID string) (int, error) {
	var maxNumber int
	err := s.DB.QueryRowContext(ctx, "SELECT COALESCE(MAX(token_number), 0) FROM queue_tokens WHERE clinic_id = ?", clinicID).Scan(&maxNumber)
	if err != nil {
		return 0, err
	}
	return maxNumber + 1, nil
}

// Contact requests

func (s *Store) CreateContactRequest(ctx context.Context, input models.NewContactRequest) (models.ContactRequest, error) {
	r := models.ContactRequest{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Email:      input.Email,
		Phone:      emptyToNil(input.Phone),
		Message:    emptyToNil(input.Message),
		ClinicName: emptyToNil(input.ClinicName),
		CreatedAt:  s.now(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO contact_requests (id, name, email, phone, message, clinic_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Email, nullString(r.Phone), nullString(r.Message), nullString(r.ClinicName), r.CreatedAt)
	if err != nil {
		return models.ContactRequest{}, fmt.Errorf("create contact request: %w", mapError(err))
	}
	return r, nil
}

func (s *Store) GetContactRequests(ctx context.Context) ([]models.ContactRequest, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, name, email, phone, message, clinic_name, created_at FROM contact_requests ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ContactRequest, 0)
	for rows.Next() {
		var r models.ContactRequest
		var phone, message, clinicName sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &phone, &message, &clinicName, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Phone = stringPtr(phone)
		r.Message = stringPtr(message)
		r.ClinicName = stringPtr(clinicName)
		out = append(out, r)
	}
	return out, rows.Err()
}
