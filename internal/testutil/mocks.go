package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// RecordedRequest is one request seen by the mock tracker.
type RecordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
}

// MockTracker is an in-memory sample tracking service. Its API lives
// under /api and the health check at the service root.
type MockTracker struct {
	mu       sync.Mutex
	server   *httptest.Server
	samples  map[string]map[string]any
	requests []RecordedRequest
	token    string

	// Credentials enables POST /auth/login and bearer checks when set.
	Username string
	Password string

	// UploadStatus overrides the status of POST and PUT when non-zero.
	UploadStatus int
	// Delay is applied to every sample request.
	Delay time.Duration
	// Unhealthy makes GET /health answer 503.
	Unhealthy bool
}

// NewMockTracker starts a mock tracker that is closed with the test.
func NewMockTracker(t *testing.T) *MockTracker {
	t.Helper()

	m := &MockTracker{samples: make(map[string]map[string]any)}

	router := mux.NewRouter()
	router.Use(m.record)
	router.HandleFunc("/health", m.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", m.handleLogin).Methods("POST")

	api.Handle("/samples", m.requireToken(http.HandlerFunc(m.handleCreate))).Methods("POST")
	api.Handle("/samples/{id}", m.requireToken(http.HandlerFunc(m.handleGet))).Methods("GET")
	api.Handle("/samples/{id}", m.requireToken(http.HandlerFunc(m.handleUpdate))).Methods("PUT")

	m.server = httptest.NewServer(router)
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the API base URL, ending in /api.
func (m *MockTracker) URL() string {
	return m.server.URL + "/api"
}

// Seed stores a sample as if it had been uploaded before.
func (m *MockTracker) Seed(id string, doc map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[id] = doc
}

// Sample returns the stored document for id.
func (m *MockTracker) Sample(id string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.samples[id]
	return doc, ok
}

// Requests returns all recorded requests.
func (m *MockTracker) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RecordedRequest, len(m.requests))
	copy(result, m.requests)
	return result
}

// Token returns the access token handed out by the last login.
func (m *MockTracker) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MockTracker) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (m *MockTracker) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Delay > 0 {
			time.Sleep(m.Delay)
		}
		if m.Username != "" {
			token := m.Token()
			if token == "" || r.Header.Get("Authorization") != "Bearer "+token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *MockTracker) handleHealth(w http.ResponseWriter, r *http.Request) {
	if m.Unhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (m *MockTracker) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}
	if m.Username == "" || creds.Username != m.Username || creds.Password != m.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   creds.Username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("mock-tracker"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (m *MockTracker) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := m.Sample(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "sample not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (m *MockTracker) handleCreate(w http.ResponseWriter, r *http.Request) {
	if m.UploadStatus != 0 {
		writeJSON(w, m.UploadStatus, map[string]string{"detail": http.StatusText(m.UploadStatus)})
		return
	}
	doc, err := decodeDoc(r.Body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	id, _ := doc["sample_id"].(string)
	if strings.TrimSpace(id) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "sample_id is required"})
		return
	}
	m.Seed(id, doc)
	writeJSON(w, http.StatusCreated, doc)
}

func (m *MockTracker) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if m.UploadStatus != 0 {
		writeJSON(w, m.UploadStatus, map[string]string{"detail": http.StatusText(m.UploadStatus)})
		return
	}
	id := mux.Vars(r)["id"]
	if _, ok := m.Sample(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "sample not found"})
		return
	}
	doc, err := decodeDoc(r.Body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	m.Seed(id, doc)
	writeJSON(w, http.StatusOK, doc)
}

func decodeDoc(body io.Reader) (map[string]any, error) {
	var doc map[string]any
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
