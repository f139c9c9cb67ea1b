package emissor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin renews the session this long before the token's exp claim,
// so a request never goes out with a token about to lapse mid-flight.
const refreshMargin = 30 * time.Second

// session caches the backend's JWT and refreshes it ahead of expiry. The
// backend trades the long-lived API key for a short-lived session token.
type session struct {
	client  *http.Client
	baseURL string
	apiKey  string

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

func newSession(client *http.Client, baseURL, apiKey string) *session {
	return &session{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (s *session) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && time.Now().Before(s.expiresAt.Add(-refreshMargin)) {
		return s.cached, nil
	}

	token, expiresAt, err := s.login(ctx)
	if err != nil {
		return "", err
	}

	s.cached = token
	s.expiresAt = expiresAt

	return token, nil
}

// invalidate drops the cached token so the next call logs in again. Called
// when the backend rejects a token it issued, whatever its exp claim said.
func (s *session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = ""
}

func (s *session) login(ctx context.Context) (string, time.Time, error) {
	payload, err := json.Marshal(map[string]string{"api_key": s.apiKey})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encoding login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("creating login request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("login respondeu %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", time.Time{}, fmt.Errorf("decoding login reply: %w", err)
	}

	return out.Token, tokenExpiry(out.Token), nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client only needs to know when to refresh, validation is the backend's
// job. Tokens without a readable exp are treated as already due, forcing a
// login per request rather than failing.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
