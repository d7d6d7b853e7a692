package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/ratelimit"
)

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name: "cloudflare header wins",
			headers: map[string]string{
				"CF-Connecting-IP": "198.51.100.7",
				"X-Real-IP":        "10.0.0.1",
				"X-Forwarded-For":  "10.0.0.2, 10.0.0.3",
			},
			want: "198.51.100.7",
		},
		{
			name: "real ip beats forwarded",
			headers: map[string]string{
				"X-Real-IP":       "10.0.0.1",
				"X-Forwarded-For": "10.0.0.2, 10.0.0.3",
			},
			want: "10.0.0.1",
		},
		{
			name:    "first forwarded hop",
			headers: map[string]string{"X-Forwarded-For": " 10.0.0.2 , 10.0.0.3"},
			want:    "10.0.0.2",
		},
		{
			name:    "no headers",
			headers: nil,
			want:    "anonymous",
		},
		{
			name:    "blank headers fall through",
			headers: map[string]string{"CF-Connecting-IP": "  ", "X-Forwarded-For": " ,10.0.0.3"},
			want:    "anonymous",
		},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			if got := ClientIdentifier(c); got != tt.want {
				t.Errorf("ClientIdentifier = %q, want %q", got, tt.want)
			}
		})
	}
}

func doLimited(t *testing.T, mw echo.MiddlewareFunc, headers map[string]string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	invoked := false
	handler := mw(func(c echo.Context) error {
		invoked = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, invoked
}

func TestLimitAllowsAndDenies(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	mw := Limit(limiter, ratelimit.TierAuth)
	headers := map[string]string{"X-Real-IP": "10.0.0.1"}
	budget := ratelimit.PolicyFor(ratelimit.TierAuth).MaxRequests

	for i := 1; i <= budget; i++ {
		rec, invoked := doLimited(t, mw, headers)
		if !invoked {
			t.Fatalf("request %d blocked, want allowed", i)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
			t.Errorf("X-RateLimit-Limit = %q, want 5", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got == "" {
			t.Error("missing X-RateLimit-Remaining header")
		}
	}

	rec, invoked := doLimited(t, mw, headers)
	if invoked {
		t.Fatal("handler invoked over budget")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Data    any    `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad 429 body: %v", err)
	}
	if body.Error != "Rate limit exceeded" {
		t.Errorf("error = %q, want %q", body.Error, "Rate limit exceeded")
	}
	if body.Message == "" || body.Data != nil {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestLimitSeparatesClients(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	mw := Limit(limiter, ratelimit.TierAuth)
	budget := ratelimit.PolicyFor(ratelimit.TierAuth).MaxRequests

	for i := 0; i <= budget; i++ {
		doLimited(t, mw, map[string]string{"X-Real-IP": "10.0.0.1"})
	}

	if _, invoked := doLimited(t, mw, map[string]string{"X-Real-IP": "10.0.0.2"}); !invoked {
		t.Error("second client blocked by first client's budget")
	}
}

func TestLimitWithUserBothChecks(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	budget := ratelimit.PolicyFor(ratelimit.TierAuth).MaxRequests

	uid := "u-1"
	mw := LimitWithUser(limiter, ratelimit.TierAuth, func(echo.Context) string { return uid })

	// Same user from rotating IPs: the user budget is the binding constraint.
	for i := 0; i < budget; i++ {
		headers := map[string]string{"X-Real-IP": "10.0.0." + string(rune('1'+i))}
		if _, invoked := doLimited(t, mw, headers); !invoked {
			t.Fatalf("request %d blocked, want allowed", i+1)
		}
	}

	rec, invoked := doLimited(t, mw, map[string]string{"X-Real-IP": "10.0.0.99"})
	if invoked {
		t.Fatal("handler invoked after user budget exhausted")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "User rate limit exceeded" {
		t.Errorf("error = %q, want user variant", body.Error)
	}

	// A different user from a fresh IP is unaffected.
	uid = "u-2"
	if _, invoked := doLimited(t, mw, map[string]string{"X-Real-IP": "10.0.1.1"}); !invoked {
		t.Error("second user blocked by first user's budget")
	}
}

func TestLimitWithUserIPDenialSkipsUserCheck(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	budget := ratelimit.PolicyFor(ratelimit.TierAuth).MaxRequests

	mw := LimitWithUser(limiter, ratelimit.TierAuth, func(echo.Context) string { return "u-1" })
	headers := map[string]string{"X-Real-IP": "10.0.0.1"}

	for i := 0; i <= budget; i++ {
		doLimited(t, mw, headers)
	}

	// The IP bucket is exhausted but the user bucket holds only the
	// requests that cleared the IP check.
	res := limiter.Peek("user:u-1", ratelimit.TierAuth)
	if res.Remaining != 0 {
		t.Errorf("user Remaining = %d, want 0", res.Remaining)
	}
	rec, _ := doLimited(t, mw, headers)
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Rate limit exceeded" {
		t.Errorf("error = %q, want IP variant when IP check fails first", body.Error)
	}
}

func TestLimitWithUserAnonymous(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	mw := LimitWithUser(limiter, ratelimit.TierAPI, func(echo.Context) string { return "" })

	if _, invoked := doLimited(t, mw, map[string]string{"X-Real-IP": "10.0.0.1"}); !invoked {
		t.Error("anonymous request blocked, want IP-only check")
	}
	if got := limiter.Stats().Entries; got != 1 {
		t.Errorf("Entries = %d, want 1 (no user counter for empty ID)", got)
	}
}
