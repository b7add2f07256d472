package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/seed"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newClinic(t *testing.T, s *Store, name, address string) models.Clinic {
	t.Helper()
	c, err := s.CreateClinic(context.Background(), models.NewClinic{
		Name: name, Address: address, Area: "Andheri", Phone: "+91", Email: "a@b.c",
		Latitude: "19.1", Longitude: "72.8",
	})
	if err != nil {
		t.Fatalf("CreateClinic: %v", err)
	}
	return c
}

func TestCreateClinicDefaults(t *testing.T) {
	s := New(WithClock(fixedClock()))
	c := newClinic(t, s, "Apollo", "Andheri West")

	if c.ID == "" {
		t.Fatal("expected generated id")
	}
	if c.Status != models.ClinicStatusOpen || !c.IsActive || c.QueueSize != 0 || c.CurrentWaitTime != 0 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if !c.CreatedAt.Equal(fixedClock()()) {
		t.Errorf("createdAt = %v", c.CreatedAt)
	}
}

func TestLoadSeed(t *testing.T) {
	clinics, err := seed.Clinics()
	if err != nil {
		t.Fatal(err)
	}
	s := New()
	if n := s.LoadSeed(clinics); n != len(clinics) {
		t.Fatalf("LoadSeed = %d, want %d", n, len(clinics))
	}
	all, _ := s.GetClinics(context.Background())
	if len(all) != len(clinics) {
		t.Fatalf("GetClinics = %d, want %d", len(all), len(clinics))
	}
	if all[0].Name != clinics[0].Name || all[0].QueueSize != clinics[0].QueueSize {
		t.Errorf("first clinic = %+v", all[0])
	}
}

func TestGetClinicsSkipsInactive(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newClinic(t, s, "A", "x")
	newClinic(t, s, "B", "y")
	off := false
	if _, err := s.UpdateClinic(ctx, a.ID, models.ClinicUpdate{IsActive: &off}); err != nil {
		t.Fatal(err)
	}
	all, _ := s.GetClinics(ctx)
	if len(all) != 1 || all[0].Name != "B" {
		t.Fatalf("GetClinics = %+v", all)
	}
	// direct lookups still see inactive clinics
	if _, err := s.GetClinic(ctx, a.ID); err != nil {
		t.Fatalf("GetClinic inactive: %v", err)
	}
}

func TestSearchClinics(t *testing.T) {
	ctx := context.Background()
	s := New()
	newClinic(t, s, "Apollo Clinic", "Andheri West, Mumbai")
	newClinic(t, s, "Fortis Care", "Bandra East, Mumbai")
	c := newClinic(t, s, "City Health", "Powai, Mumbai")
	area := "Powai"
	s.clinics[s.clinicIdx[c.ID]].Area = area

	tests := []struct {
		name  string
		query models.ClinicQuery
		want  int
	}{
		{"empty returns all", models.ClinicQuery{}, 3},
		{"name case insensitive", models.ClinicQuery{Search: "apollo"}, 1},
		{"address match", models.ClinicQuery{Search: "BANDRA"}, 1},
		{"no match", models.ClinicQuery{Search: "xyz"}, 0},
		{"area exact", models.ClinicQuery{Area: "powai"}, 1},
		{"area via address", models.ClinicQuery{Area: "bandra"}, 1},
		{"search and area", models.ClinicQuery{Search: "mumbai", Area: "Andheri"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchClinics(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d clinics, want %d", len(got), tt.want)
			}
		})
	}
}

func TestCreateQueueTokenNumbering(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newClinic(t, s, "A", "x")
	b := newClinic(t, s, "B", "y")

	if n, _ := s.GetNextTokenNumber(ctx, a.ID); n != 1 {
		t.Fatalf("next for empty clinic = %d, want 1", n)
	}

	wait := 15
	t1, err := s.CreateQueueToken(ctx, models.NewQueueToken{ClinicID: a.ID, PatientID: "p1", EstimatedWaitTime: &wait})
	if err != nil {
		t.Fatal(err)
	}
	t2, _ := s.CreateQueueToken(ctx, models.NewQueueToken{ClinicID: a.ID, PatientID: "p2"})
	t3, _ := s.CreateQueueToken(ctx, models.NewQueueToken{ClinicID: b.ID, PatientID: "p3"})

	if t1.TokenNumber != 1 || t2.TokenNumber != 2 || t3.TokenNumber != 1 {
		t.Errorf("numbers = %d %d %d", t1.TokenNumber, t2.TokenNumber, t3.TokenNumber)
	}
	if t1.Status != models.TokenStatusWaiting {
		t.Errorf("status = %q", t1.Status)
	}
	if t2.EstimatedWaitTime != nil {
		t.Errorf("estimatedWaitTime = %v, want nil", *t2.EstimatedWaitTime)
	}

	clinic, _ := s.GetClinic(ctx, a.ID)
	if clinic.QueueSize != 2 || clinic.CurrentWaitTime != 15 {
		t.Errorf("clinic counters = %d/%d", clinic.QueueSize, clinic.CurrentWaitTime)
	}

	tokens, _ := s.GetQueueTokens(ctx, a.ID)
	if len(tokens) != 2 || tokens[0].TokenNumber != 1 || tokens[1].TokenNumber != 2 {
		t.Errorf("GetQueueTokens = %+v", tokens)
	}
}

func TestCreateQueueTokenZeroWaitIsNull(t *testing.T) {
	s := New()
	c := newClinic(t, s, "A", "x")
	zero := 0
	tok, err := s.CreateQueueToken(context.Background(), models.NewQueueToken{ClinicID: c.ID, PatientID: "p", EstimatedWaitTime: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if tok.EstimatedWaitTime != nil {
		t.Errorf("expected nil wait, got %d", *tok.EstimatedWaitTime)
	}
}

func TestCreateQueueTokenUnknownClinic(t *testing.T) {
	s := New()
	_, err := s.CreateQueueToken(context.Background(), models.NewQueueToken{ClinicID: "nope", PatientID: "p"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateQueueTokenConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newClinic(t, s, "A", "x")

	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.CreateQueueToken(ctx, models.NewQueueToken{ClinicID: c.ID, PatientID: "p"})
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- tok.TokenNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate token number %d", num)
		}
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Errorf("missing token number %d", i)
		}
	}
	clinic, _ := s.GetClinic(ctx, c.ID)
	if clinic.QueueSize != n {
		t.Errorf("queueSize = %d, want %d", clinic.QueueSize, n)
	}
}

func TestAdjustClinicQueueSizeFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newClinic(t, s, "A", "x")
	if _, err := s.CreateQueueToken(ctx, models.NewQueueToken{ClinicID: c.ID, PatientID: "p"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.AdjustClinicQueueSize(ctx, c.ID, -1)
	if err != nil || got.QueueSize != 0 {
		t.Fatalf("after -1: %+v, %v", got, err)
	}
	got, _ = s.AdjustClinicQueueSize(ctx, c.ID, -1)
	if got.QueueSize != 0 {
		t.Errorf("queueSize went negative: %d", got.QueueSize)
	}
	if _, err := s.AdjustClinicQueueSize(ctx, "missing", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing clinic err = %v", err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.CreateUser(ctx, "asha", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateUser(ctx, "asha", "other"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate username err = %v", err)
	}
	got, err := s.GetUserByUsername(ctx, "asha")
	if err != nil || got.ID != u.ID {
		t.Errorf("GetUserByUsername = %+v, %v", got, err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser missing err = %v", err)
	}
}

func TestPatientProfiles(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	uid := "user-1"

	p, err := s.CreatePatientProfile(ctx, models.NewPatientProfile{
		UserID:         &uid,
		PatientDetails: models.PatientDetails{FirstName: "Asha", LastName: "Rao", Email: "a@r.in", Phone: "99"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.PreferredLanguage != "en" {
		t.Errorf("preferredLanguage = %q", p.PreferredLanguage)
	}
	if _, err := s.CreatePatientProfile(ctx, models.NewPatientProfile{UserID: &uid}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second profile err = %v", err)
	}

	now = now.Add(time.Hour)
	city := "Mumbai"
	updated, err := s.UpdatePatientProfileByUserID(ctx, uid, models.PatientProfilePatch{City: &city})
	if err != nil {
		t.Fatal(err)
	}
	if updated.City == nil || *updated.City != city || updated.FirstName != "Asha" {
		t.Errorf("patched profile = %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("updatedAt not bumped")
	}
	if _, err := s.UpdatePatientProfileByUserID(ctx, "other", models.PatientProfilePatch{}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
}

func TestQRCodeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, _ := s.CreatePatientQRCode(ctx, models.NewPatientQRCode{PatientProfileID: "prof", QRCodeData: "{}"})
	if !first.IsActive || first.ScanCount != 0 {
		t.Fatalf("new code = %+v", first)
	}
	if _, err := s.GetActiveQRCodeByProfileID(ctx, "other"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown profile err = %v", err)
	}

	second, err := s.RotatePatientQRCode(ctx, models.NewPatientQRCode{PatientProfileID: "prof", QRCodeData: "{}"})
	if err != nil {
		t.Fatal(err)
	}
	active, err := s.GetActiveQRCodeByProfileID(ctx, "prof")
	if err != nil || active.ID != second.ID {
		t.Fatalf("active = %+v, %v", active, err)
	}
	if n := countActiveQRCodes(s, "prof"); n != 1 {
		t.Fatalf("active codes after rotate = %d", n)
	}

	at := time.Now()
	bumped, err := s.IncrementQRCodeScanCount(ctx, second.ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if bumped.ScanCount != 1 || bumped.LastScannedAt == nil || !bumped.LastScannedAt.Equal(at) {
		t.Errorf("bumped = %+v", bumped)
	}

	scan, err := s.RecordQRCodeScan(ctx, models.NewQRCodeScan{QRCodeID: second.ID, ScannedByStaffID: "st", ClinicID: "c", ScanResult: models.ScanResultSuccess})
	if err != nil || scan.ID == "" {
		t.Errorf("RecordQRCodeScan = %+v, %v", scan, err)
	}
	if _, err := s.RecordQRCodeScan(ctx, models.NewQRCodeScan{QRCodeID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("scan of unknown code err = %v", err)
	}
}

func TestAmbulanceRequests(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, _ := s.CreateAmbulanceRequest(ctx, models.NewAmbulanceRequest{AmbulanceDetails: models.AmbulanceDetails{PatientName: "one"}})
	second, _ := s.CreateAmbulanceRequest(ctx, models.NewAmbulanceRequest{AmbulanceDetails: models.AmbulanceDetails{PatientName: "two"}})

	if first.Status != models.AmbulanceRequested {
		t.Errorf("default status = %q", first.Status)
	}
	list, _ := s.GetAmbulanceRequests(ctx)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("list not newest first: %+v", list)
	}

	at := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	eta := "2024-05-05T10:08:00Z"
	got, err := s.UpdateAmbulanceRequestStatus(ctx, first.ID, models.AmbulanceDispatched, &eta, at)
	if err != nil {
		t.Fatal(err)
	}
	if got.DispatchedAt == nil || !got.DispatchedAt.Equal(at) || got.EstimatedArrival == nil || *got.EstimatedArrival != eta {
		t.Errorf("dispatched = %+v", got)
	}
	if got.ArrivedAt != nil || got.CompletedAt != nil {
		t.Error("unexpected timestamps stamped")
	}
	if _, err := s.UpdateAmbulanceRequestStatus(ctx, "missing", models.AmbulanceArrived, nil, at); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestClinicStaff(t *testing.T) {
	ctx := context.Background()
	s := New()
	st, err := s.CreateClinicStaff(ctx, models.NewClinicStaff{UserID: "u", ClinicID: "c", FirstName: "R", LastName: "K", Role: models.StaffRoleNurse, Email: "r@k"})
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsActive {
		t.Error("staff should default to active")
	}
	got, err := s.GetClinicStaffByUserID(ctx, "u")
	if err != nil || got.ID != st.ID {
		t.Errorf("GetClinicStaffByUserID = %+v, %v", got, err)
	}
}

func countActiveQRCodes(s *Store, profileID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, q := range s.qrCodes {
		if q.PatientProfileID == profileID && q.IsActive {
			n++
		}
	}
	return n
}

func TestRotatePatientQRCodeConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.CreatePatientQRCode(ctx, models.NewPatientQRCode{PatientProfileID: "prof", QRCodeData: "{}"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.RotatePatientQRCode(ctx, models.NewPatientQRCode{PatientProfileID: "prof", QRCodeData: "{}"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := countActiveQRCodes(s, "prof"); n != 1 {
		t.Errorf("active codes = %d, want 1", n)
	}
}
