package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tiergate/internal/application"
	"tiergate/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const testToken = "s3cret-token"

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

type fakeValidator struct {
	results map[string]models.ValidationResult
	err     error
	panics  bool
	calls   int
}

func (f *fakeValidator) Validate(_ context.Context, playerID string) (models.ValidationResult, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return models.ValidationResult{}, f.err
	}
	if r, ok := f.results[playerID]; ok {
		return r, nil
	}
	return models.Denied(models.ReasonNoLink), nil
}

func (f *fakeValidator) HasTierThree(context.Context, string) (bool, error) {
	return false, nil
}

type fakeLinks struct {
	application.LinkService
	code string
	err  error
}

func (f *fakeLinks) RequestCode(_ context.Context, minecraftID string) (string, error) {
	return f.code, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, validator *fakeValidator, links *fakeLinks) (*Server, *prometheus.Registry) {
	t.Helper()
	if links == nil {
		links = &fakeLinks{}
	}
	reg := prometheus.NewRegistry()
	cfg := &Config{Addr: ":0", APIToken: testToken, MaxBodyBytes: 1024, RateLimitRPS: 1000, RateLimitBurst: 1000}
	services := &application.Service{ValidationService: validator, LinkService: links}

	s := NewServer(cfg, services, fakePinger{}, reg, nopLogger{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, reg
}

func do(t *testing.T, h http.Handler, path, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.RemoteAddr = "10.0.0.7:25565"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestIsValidPlayerEndToEnd(t *testing.T) {
	validator := &fakeValidator{results: map[string]models.ValidationResult{
		"mcrole":   models.Allowed(),
		"mcnorole": models.Denied(models.ReasonNoRole),
	}}
	s, _ := newTestServer(t, validator, nil)
	bearer := "Bearer " + testToken

	cases := []struct {
		name       string
		auth       string
		body       string
		wantStatus int
		wantBody   map[string]any
	}{
		{"missing player_id", bearer, `{}`, 400, map[string]any{"errcode": "NO_PLAYER_ID"}},
		{"non-string player_id", bearer, `{"player_id": 123}`, 400, map[string]any{"errcode": "PLAYER_ID_TYPE"}},
		{"null player_id", bearer, `{"player_id": null}`, 400, map[string]any{"errcode": "PLAYER_ID_TYPE"}},
		{"missing body", bearer, ``, 400, map[string]any{"errcode": "NO_BODY"}},
		{"non-object body", bearer, `[1,2]`, 400, map[string]any{"errcode": "NO_BODY"}},
		{"unlinked", bearer, `{"player_id": "mcnobody"}`, 200, map[string]any{"valid": false, "reason": "no_link"}},
		{"no role", bearer, `{"player_id": "mcnorole"}`, 200, map[string]any{"valid": false, "reason": "no_role"}},
		{"has role", bearer, `{"player_id": "mcrole"}`, 200, map[string]any{"valid": true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, s.Handler(), "/isValidPlayer", tc.auth, tc.body)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rr.Code, tc.wantStatus, rr.Body.String())
			}
			body := decode(t, rr)
			for k, v := range tc.wantBody {
				if body[k] != v {
					t.Fatalf("%s = %v, want %v (body %v)", k, body[k], v, body)
				}
			}
			if tc.wantStatus == 400 {
				if msg, _ := body["message"].(string); msg == "" {
					t.Fatalf("expected a message in %v", body)
				}
			}
			if valid, _ := body["valid"].(bool); valid {
				if _, ok := body["reason"]; ok {
					t.Fatalf("reason must be absent when valid: %v", body)
				}
			}
		})
	}
}

func TestAuthorizationRunsFirst(t *testing.T) {
	validator := &fakeValidator{}
	s, _ := newTestServer(t, validator, nil)

	cases := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusNonAuthoritativeInfo},
		{"no scheme pair", testToken, http.StatusNonAuthoritativeInfo},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// the body is invalid too; auth must win
			rr := do(t, s.Handler(), "/isValidPlayer", tc.auth, `{"player_id": 1}`)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if rr.Body.Len() != 0 {
				t.Fatalf("expected empty body, got %q", rr.Body.String())
			}
		})
	}
	if validator.calls != 0 {
		t.Fatalf("validator must not run for rejected requests, ran %d times", validator.calls)
	}
}

func TestBodyValidationRunsBeforeLookup(t *testing.T) {
	validator := &fakeValidator{}
	s, _ := newTestServer(t, validator, nil)

	do(t, s.Handler(), "/isValidPlayer", "Bearer "+testToken, `{"player_id": true}`)
	if validator.calls != 0 {
		t.Fatalf("validator ran %d times for a malformed body", validator.calls)
	}
}

func TestValidationFailureFailsClosed(t *testing.T) {
	validator := &fakeValidator{err: errors.New("role check failed: 503")}
	s, reg := newTestServer(t, validator, nil)

	rr := do(t, s.Handler(), "/isValidPlayer", "Bearer "+testToken, `{"player_id": "mc1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decode(t, rr)
	if body["valid"] != false {
		t.Fatalf("expected valid=false, got %v", body)
	}
	if _, ok := body["reason"]; ok {
		t.Fatalf("failure body must not carry a reason: %v", body)
	}

	if got := counterValue(t, reg, "tiergate_validation_outcomes_total", outcomeError); got != 1 {
		t.Fatalf("expected one error outcome, got %v", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPanicFailsClosed(t *testing.T) {
	s, _ := newTestServer(t, &fakeValidator{panics: true}, nil)

	rr := do(t, s.Handler(), "/isValidPlayer", "Bearer "+testToken, `{"player_id": "mc1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body := decode(t, rr); body["valid"] != false {
		t.Fatalf("expected valid=false, got %v", body)
	}
}

func TestRequestCode(t *testing.T) {
	s, _ := newTestServer(t, &fakeValidator{}, &fakeLinks{code: "1a2b3c4d"})

	rr := do(t, s.Handler(), "/requestCode", "Bearer "+testToken, `{"player_id": "mc1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := decode(t, rr); body["auth_code"] != "1a2b3c4d" {
		t.Fatalf("unexpected body %v", body)
	}

	s, _ = newTestServer(t, &fakeValidator{}, &fakeLinks{err: errors.New("db down")})
	rr = do(t, s.Handler(), "/requestCode", "Bearer "+testToken, `{"player_id": "mc1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body := decode(t, rr); body["errcode"] != errcodeInternal {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s, _ := newTestServer(t, &fakeValidator{}, nil)

	big := `{"player_id": "` + strings.Repeat("a", 2048) + `"}`
	rr := do(t, s.Handler(), "/isValidPlayer", "Bearer "+testToken, big)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if body := decode(t, rr); body["errcode"] != errcodeNoBody {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestInitRequiresToken(t *testing.T) {
	s := NewServer(&Config{}, &application.Service{}, fakePinger{}, prometheus.NewRegistry(), nopLogger{})
	if err := s.Init(); err == nil {
		t.Fatal("expected error without API token")
	}
}

func TestReady(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(&Config{APIToken: testToken}, &application.Service{}, fakePinger{err: errors.New("down")}, reg, nopLogger{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestInitAppliesWriteTimeout(t *testing.T) {
	cfg := &Config{APIToken: testToken, WriteTimeout: 40 * time.Second}
	s := NewServer(cfg, &application.Service{}, fakePinger{}, prometheus.NewRegistry(), nopLogger{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.srv.WriteTimeout != 40*time.Second {
		t.Fatalf("WriteTimeout = %v", s.srv.WriteTimeout)
	}

	s = NewServer(&Config{APIToken: testToken}, &application.Service{}, fakePinger{}, prometheus.NewRegistry(), nopLogger{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.srv.WriteTimeout != defaultWriteTimeout {
		t.Fatalf("WriteTimeout = %v, want default", s.srv.WriteTimeout)
	}
}
