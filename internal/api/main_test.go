package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kaizen-online/internal/auth"
	"kaizen-online/internal/config"
	"kaizen-online/internal/database"
	"kaizen-online/internal/models"
	"kaizen-online/internal/session"
	"kaizen-online/internal/storage"
	"kaizen-online/internal/timer"
	"kaizen-online/internal/websocket"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "api_test_secret"

var testPasswordHash = func() string {
	hash, err := auth.HashPassword("password")
	if err != nil {
		panic(err)
	}
	return hash
}()

type stubEmployees struct {
	employees map[string]*models.Employee
	events    []models.SessionEvent
	pingErr   error
}

func newStubEmployees() *stubEmployees {
	name := "Test Employee"
	return &stubEmployees{
		employees: map[string]*models.Employee{
			"E001": {ID: 1, EmployeeCode: "E001", PasswordHash: testPasswordHash, DisplayName: &name, Role: "employee"},
		},
	}
}

func (s *stubEmployees) GetEmployeeByCode(_ context.Context, code string) (*models.Employee, error) {
	if e, ok := s.employees[code]; ok {
		return e, nil
	}
	return nil, database.ErrEmployeeNotFound
}

func (s *stubEmployees) GetEventsSince(_ context.Context, code string, sinceID int64) ([]models.SessionEvent, error) {
	out := []models.SessionEvent{}
	for _, ev := range s.events {
		if ev.EmployeeCode == code && ev.ID > sinceID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *stubEmployees) Ping(context.Context) error { return s.pingErr }

type recordingJournal struct {
	mu      sync.Mutex
	entries []database.LogSessionEventParams
}

func (j *recordingJournal) Record(arg database.LogSessionEventParams) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, arg)
	return true
}

func (j *recordingJournal) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.EventType)
	}
	return out
}

type testEnv struct {
	server    *Server
	handler   http.Handler
	clock     *timer.Fake
	registry  *session.Registry
	employees *stubEmployees
	journal   *recordingJournal
}

// readOnlyKV refuses every write.
type readOnlyKV struct {
	storage.KV
}

func (readOnlyKV) Set(context.Context, string, []byte) error {
	return errors.New("storage is read-only")
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP:    config.HTTPConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		JWT:     config.JWTConfig{Secret: testSecret},
		Session: config.DefaultSessionConfig(),
	}
}

// newTestEnv runs the server on a manual clock; requests execute on the
// test goroutine.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := storage.NewMemoryStorage(0)
	t.Cleanup(func() { _ = kv.Close() })
	return newTestEnvWithKV(t, kv)
}

func newTestEnvWithKV(t *testing.T, kv storage.KV) *testEnv {
	t.Helper()

	cfg := testConfig()
	clock := timer.NewFake(time.Now())
	registry, err := session.NewRegistry(kv, clock, cfg.Session, zerolog.Nop())
	require.NoError(t, err)

	env := &testEnv{
		clock:     clock,
		registry:  registry,
		employees: newStubEmployees(),
		journal:   &recordingJournal{},
	}
	env.server = NewServer(cfg, clock, registry, env.employees, env.journal, websocket.NewHub(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, env.server.Start(context.Background()))
	env.handler = env.server.Routes()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T, rememberMe bool) LoginResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{EmployeeID: "E001", Password: "password", RememberMe: rememberMe})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
