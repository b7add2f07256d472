package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/findmyclinic-backend/config"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/memory"
	"github.com/c14220110/findmyclinic-backend/ws"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) last() (ws.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return ws.Event{}, false
	}
	return p.events[len(p.events)-1], true
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	e      *echo.Echo
	store  *memory.Store
	events *recordingPublisher
	clinic models.Clinic
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AppEnv = config.EnvDevelopment
	cfg.JWTSecret = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.RateLimitPerSecond = 0
	for _, m := range mutate {
		m(cfg)
	}

	store := memory.New()
	clinic, err := store.CreateClinic(context.Background(), models.NewClinic{
		Name: "Apollo Clinic", Address: "80 Feet Road, Koramangala, Bengaluru", Area: "Koramangala",
		Phone: "+91 80 1234 5678", Email: "apollo@example.com", Latitude: "12.9352", Longitude: "77.6245",
	})
	if err != nil {
		t.Fatal(err)
	}

	events := &recordingPublisher{}
	e := NewServer(Deps{Store: store, Config: cfg, Logger: zerolog.Nop(), Publisher: events})
	return &testServer{e: e, store: store, events: events, clinic: clinic}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get(echo.HeaderContentType) != "image/png" && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, env envelope, code int, message string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, code, rec.Body.String())
	}
	if env.Status != code {
		t.Errorf("envelope status = %d, want %d", env.Status, code)
	}
	if message != "" && env.Message != message {
		t.Errorf("message = %q, want %q", env.Message, message)
	}
}

type authData struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	UserType    string              `json:"userType"`
	ClinicStaff *models.ClinicStaff `json:"clinicStaff"`
	Token       string              `json:"token"`
}

func (ts *testServer) signup(t *testing.T, username string) authData {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"username": username, "password": "hunter22"}, "")
	expectStatus(t, rec, env, http.StatusCreated, "")
	return decode[authData](t, env.Data)
}

// staffSession creates a staff member of the test clinic and logs them in.
func (ts *testServer) staffSession(t *testing.T, username string) authData {
	t.Helper()
	return ts.staffSessionAt(t, username, ts.clinic.ID)
}

func (ts *testServer) staffSessionAt(t *testing.T, username, clinicID string) authData {
	t.Helper()
	user := ts.signup(t, username)
	rec, env := ts.do(t, http.MethodPost, "/api/clinic-staff", map[string]string{
		"userId": user.User.ID, "clinicId": clinicID, "firstName": "Priya", "lastName": "Rao",
		"role": models.StaffRoleReceptionist, "email": username + "@example.com",
	}, "")
	expectStatus(t, rec, env, http.StatusCreated, "")

	rec, env = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": "hunter22"}, "")
	expectStatus(t, rec, env, http.StatusOK, "Login successful")
	return decode[authData](t, env.Data)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodGet, "/api/nowhere", nil, "")
	expectStatus(t, rec, env, http.StatusNotFound, "Not Found")
}

func TestClinicDirectory(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/clinics?search=apollo", nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")
	if clinics := decode[[]models.Clinic](t, env.Data); len(clinics) != 1 || clinics[0].ID != ts.clinic.ID {
		t.Errorf("search result = %+v", clinics)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/clinics/"+ts.clinic.ID, nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")

	rec, env = ts.do(t, http.MethodGet, "/api/clinics/missing", nil, "")
	expectStatus(t, rec, env, http.StatusNotFound, "Clinic not found")
	if string(env.Data) != "null" {
		t.Errorf("error data = %s, want null", env.Data)
	}

	rec, env = ts.do(t, http.MethodPost, "/api/clinics", map[string]string{"name": "No Address"}, "")
	expectStatus(t, rec, env, http.StatusBadRequest, "Invalid clinic data")

	rec, env = ts.do(t, http.MethodGet, "/api/clinics/nearby?lat=12.93&lng=77.62", nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")

	rec, env = ts.do(t, http.MethodGet, "/api/clinics/nearby?lat=north", nil, "")
	expectStatus(t, rec, env, http.StatusBadRequest, "")
}

func TestNearbyRejectsNonFiniteInput(t *testing.T) {
	ts := newTestServer(t)
	for _, query := range []string{
		"lat=NaN&lng=NaN",
		"lat=12.93&lng=Inf",
		"lat=12.93&lng=77.62&radiusKm=NaN",
		"lat=12.93&lng=77.62&radiusKm=Inf",
	} {
		rec, env := ts.do(t, http.MethodGet, "/api/clinics/nearby?"+query, nil, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d (%s), want 400", query, rec.Code, env.Message)
		}
	}

	rec, env := ts.do(t, http.MethodPost, "/api/clinics", map[string]string{
		"name": "Ghost Clinic", "address": "Nowhere", "phone": "1", "email": "g@example.com",
		"latitude": "NaN", "longitude": "77.6",
	}, "")
	expectStatus(t, rec, env, http.StatusBadRequest, "Invalid clinic data")
}

func TestNearbyOrdersByDistance(t *testing.T) {
	ts := newTestServer(t)
	if _, err := ts.store.CreateClinic(context.Background(), models.NewClinic{
		Name: "Manipal Clinic", Address: "Koramangala 5th Block", Phone: "1", Email: "m@example.com",
		Latitude: "12.9452", Longitude: "77.6245",
	}); err != nil {
		t.Fatal(err)
	}

	rec, env := ts.do(t, http.MethodGet, "/api/clinics/nearby?lat=12.9352&lng=77.6245", nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")
	got := decode[[]struct {
		Name       string  `json:"name"`
		DistanceKm float64 `json:"distanceKm"`
	}](t, env.Data)
	if len(got) != 2 || got[0].Name != "Apollo Clinic" || got[0].DistanceKm != 0 || got[1].DistanceKm != 1.11 {
		t.Errorf("nearby = %+v", got)
	}
}

func TestUpdateClinicRequiresStaff(t *testing.T) {
	ts := newTestServer(t)
	status := models.ClinicStatusBusy
	body := models.ClinicUpdate{Status: &status}

	rec, env := ts.do(t, http.MethodPatch, "/api/clinics/"+ts.clinic.ID, body, "")
	expectStatus(t, rec, env, http.StatusUnauthorized, "Authentication required")

	patient := ts.signup(t, "ravi")
	rec, env = ts.do(t, http.MethodPatch, "/api/clinics/"+ts.clinic.ID, body, patient.Token)
	expectStatus(t, rec, env, http.StatusForbidden, "Insufficient privileges")

	other, err := ts.store.CreateClinic(context.Background(), models.NewClinic{
		Name: "Fortis Clinic", Address: "Indiranagar, Bengaluru", Phone: "2", Email: "fortis@example.com",
		Latitude: "12.9719", Longitude: "77.6412",
	})
	if err != nil {
		t.Fatal(err)
	}
	outsider := ts.staffSessionAt(t, "meera", other.ID)
	rec, env = ts.do(t, http.MethodPatch, "/api/clinics/"+ts.clinic.ID, body, outsider.Token)
	expectStatus(t, rec, env, http.StatusForbidden, "")

	staff := ts.staffSession(t, "priya")
	rec, env = ts.do(t, http.MethodPatch, "/api/clinics/"+ts.clinic.ID, body, staff.Token)
	expectStatus(t, rec, env, http.StatusOK, "")
	if got := decode[models.Clinic](t, env.Data); got.Status != models.ClinicStatusBusy {
		t.Errorf("status = %q", got.Status)
	}
	if ev, ok := ts.events.last(); !ok || ev.Type != ws.EventClinicUpdated || ev.ClinicID != ts.clinic.ID {
		t.Errorf("last event = %+v", ev)
	}
}

func TestContactAndStats(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/contact", map[string]string{"name": "Dr. Shah"}, "")
	expectStatus(t, rec, env, http.StatusBadRequest, "Invalid contact request data")

	rec, env = ts.do(t, http.MethodPost, "/api/contact", map[string]string{"name": "Dr. Shah", "email": "shah@example.com"}, "")
	expectStatus(t, rec, env, http.StatusCreated, "")

	rec, env = ts.do(t, http.MethodGet, "/api/contact", nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")
	if list := decode[[]models.ContactRequest](t, env.Data); len(list) != 1 {
		t.Errorf("contact requests = %d", len(list))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/stats", nil, "")
	expectStatus(t, rec, env, http.StatusOK, "")
	stats := decode[map[string]any](t, env.Data)
	if stats["clinicsConnected"] != float64(1) || stats["avgTimeSaved"] != "120 min" {
		t.Errorf("stats = %v", stats)
	}
}
