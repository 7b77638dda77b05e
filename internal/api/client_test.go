package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/testutil"
)

func testPayload(id string) map[string]any {
	return map[string]any{"sample_id": id, "qc": "unprocessed"}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient()
	if c.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base url, got %q", c.BaseURL)
	}
	if c.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.HTTPClient.Timeout)
	}

	c = NewClient(WithBaseURL("http://tracker:8000/api/"), WithTimeout(5*time.Second))
	if c.BaseURL != "http://tracker:8000/api" {
		t.Errorf("expected trailing slash trimmed, got %q", c.BaseURL)
	}
	if c.ServiceRoot() != "http://tracker:8000" {
		t.Errorf("expected /api stripped from service root, got %q", c.ServiceRoot())
	}
	if c.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.HTTPClient.Timeout)
	}
}

func TestNewClientTimeoutOrdering(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	tests := []struct {
		name string
		opts []ClientOption
		want time.Duration
	}{
		{"timeout before http client", []ClientOption{WithTimeout(5 * time.Second), WithHTTPClient(shared)}, 5 * time.Second},
		{"timeout after http client", []ClientOption{WithHTTPClient(shared), WithTimeout(5 * time.Second)}, 5 * time.Second},
		{"http client only", []ClientOption{WithHTTPClient(shared)}, time.Minute},
		{"nil http client", []ClientOption{WithHTTPClient(nil), WithTimeout(5 * time.Second)}, 5 * time.Second},
		{"nil http client without timeout", []ClientOption{WithHTTPClient(nil)}, DefaultTimeout},
		{"zero timeout keeps default", []ClientOption{WithTimeout(0)}, DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.opts...)
			if c.HTTPClient == nil {
				t.Fatal("expected an http client")
			}
			if c.HTTPClient.Timeout != tt.want {
				t.Errorf("expected timeout %v, got %v", tt.want, c.HTTPClient.Timeout)
			}
			if shared.Timeout != time.Minute {
				t.Errorf("shared http client was modified: timeout %v", shared.Timeout)
			}
		})
	}
}

func TestUploadCreatesThenUpdates(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	c := NewClient(WithBaseURL(tracker.URL()))
	ctx := context.Background()

	result := c.Upload(ctx, "S1", testPayload("S1"))
	if !result.OK {
		t.Fatalf("expected first upload to succeed, got %+v", result)
	}
	if result.Action != ActionCreated || result.StatusCode != http.StatusCreated {
		t.Errorf("expected created/201, got %s/%d", result.Action, result.StatusCode)
	}

	result = c.Upload(ctx, "S1", map[string]any{"sample_id": "S1", "qc": "failed"})
	if !result.OK || result.Action != ActionUpdated {
		t.Fatalf("expected update, got %+v", result)
	}

	doc, ok := tracker.Sample("S1")
	if !ok || doc["qc"] != "failed" {
		t.Errorf("expected stored sample updated, got %v", doc)
	}

	var methods []string
	for _, r := range tracker.Requests() {
		methods = append(methods, r.Method+" "+r.Path)
		if r.RequestID == "" {
			t.Errorf("request %s %s has no X-Request-ID", r.Method, r.Path)
		}
	}
	want := []string{"GET /api/samples/S1", "POST /api/samples", "GET /api/samples/S1", "PUT /api/samples/S1"}
	if len(methods) != len(want) {
		t.Fatalf("expected %v, got %v", want, methods)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Errorf("request %d: expected %q, got %q", i, want[i], methods[i])
		}
	}
}

func TestSampleExists(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.Seed("S2", testPayload("S2"))
	c := NewClient(WithBaseURL(tracker.URL()))

	exists, err := c.SampleExists(context.Background(), "S2")
	if err != nil || !exists {
		t.Errorf("expected S2 to exist, got %v, %v", exists, err)
	}
	exists, err = c.SampleExists(context.Background(), "missing")
	if err != nil || exists {
		t.Errorf("expected missing sample, got %v, %v", exists, err)
	}
}

func TestAuthenticate(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.Username = "lab"
	tracker.Password = "secret"

	c := NewClient(WithBaseURL(tracker.URL()), WithCredentials("lab", "secret"))
	ctx := context.Background()

	result := c.Upload(ctx, "S1", testPayload("S1"))
	if !result.OK {
		t.Fatalf("expected authenticated upload to succeed, got %+v", result)
	}
	if !c.Authenticated() {
		t.Error("expected client to hold a token")
	}
	info := c.TokenInfo()
	if info == nil || info.Subject != "lab" {
		t.Errorf("expected token subject lab, got %+v", info)
	}
	if info != nil && !info.ExpiresAt.After(time.Now()) {
		t.Errorf("expected future expiry, got %v", info.ExpiresAt)
	}

	// A second upload reuses the token
	c.Upload(ctx, "S1", testPayload("S1"))
	logins := 0
	for _, r := range tracker.Requests() {
		if r.Path == "/api/auth/login" {
			logins++
			continue
		}
		if r.Auth != "Bearer "+tracker.Token() {
			t.Errorf("%s %s sent without bearer token", r.Method, r.Path)
		}
	}
	if logins != 1 {
		t.Errorf("expected a single login, got %d", logins)
	}
}

func TestAuthenticateFailure(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.Username = "lab"
	tracker.Password = "secret"

	c := NewClient(WithBaseURL(tracker.URL()), WithCredentials("lab", "wrong"))
	result := c.Upload(context.Background(), "S1", testPayload("S1"))

	if result.OK {
		t.Fatal("expected upload to fail with bad credentials")
	}
	if !errors.IsKind(result.Err, errors.KindAuth) {
		t.Errorf("expected auth error, got %v", result.Err)
	}
	if result.Retryable {
		t.Error("expected auth failure not to be retryable")
	}
}

func TestUploadWithoutCredentialsAgainstSecuredService(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.Username = "lab"

	result := NewClient(WithBaseURL(tracker.URL())).Upload(context.Background(), "S1", testPayload("S1"))
	if result.OK || !errors.IsKind(result.Err, errors.KindAuth) {
		t.Errorf("expected auth failure from the existence check, got %+v", result)
	}
}

func TestUploadServerError(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.UploadStatus = http.StatusServiceUnavailable

	result := NewClient(WithBaseURL(tracker.URL())).Upload(context.Background(), "S1", testPayload("S1"))
	if result.OK {
		t.Fatal("expected failure")
	}
	if result.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", result.StatusCode)
	}
	if !result.Retryable {
		t.Error("expected 5xx to be retryable")
	}
	testutil.AssertContains(t, result.Body, "Service Unavailable", "body")
}

func TestUploadClientError(t *testing.T) {
	tracker := testutil.NewMockTracker(t)

	result := NewClient(WithBaseURL(tracker.URL())).Upload(context.Background(), "S1", map[string]any{"qc": "unprocessed"})
	if result.OK || result.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %+v", result)
	}
	if result.Retryable {
		t.Error("expected 4xx not to be retryable")
	}
}

func TestUploadTimeoutIsRetryable(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	tracker.Delay = 200 * time.Millisecond

	c := NewClient(WithBaseURL(tracker.URL()), WithTimeout(20*time.Millisecond))
	result := c.Upload(context.Background(), "S1", testPayload("S1"))

	if result.OK {
		t.Fatal("expected timeout failure")
	}
	if !result.Retryable {
		t.Errorf("expected timeout to be retryable, got %v", result.Err)
	}
}

func TestUploadUnreachable(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:1/api"), WithTimeout(time.Second))
	result := c.Upload(context.Background(), "S1", testPayload("S1"))
	if result.OK || result.Err == nil {
		t.Errorf("expected connection failure, got %+v", result)
	}
}

func TestTestConnection(t *testing.T) {
	tracker := testutil.NewMockTracker(t)
	c := NewClient(WithBaseURL(tracker.URL()))

	if err := c.TestConnection(context.Background()); err != nil {
		t.Errorf("expected healthy service, got %v", err)
	}

	tracker.Unhealthy = true
	err := c.TestConnection(context.Background())
	if err == nil {
		t.Fatal("expected unhealthy service to fail")
	}
	if !errors.IsKind(err, errors.KindNetwork) {
		t.Errorf("expected network error, got %v", err)
	}

	requests := tracker.Requests()
	if requests[0].Path != "/health" {
		t.Errorf("expected health check at service root, got %q", requests[0].Path)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped 502", errors.E(errors.Op("x"), &StatusError{Code: 502}), true},
		{"404", &StatusError{Code: 404}, false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
