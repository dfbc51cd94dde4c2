package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Tokens are reused until this close to expiry, then refreshed.
const tokenExpiryBuffer = 5 * time.Minute

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// tokenCache holds one OAuth client-credentials token per tenant+client
// pair. The clock is injected for tests.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]cachedToken
	now    func() time.Time
	http   *http.Client
}

func newTokenCache(hc *http.Client) *tokenCache {
	return &tokenCache{tokens: map[string]cachedToken{}, now: time.Now, http: hc}
}

func cacheKey(c Credentials) string {
	return c.TenantID + "/" + c.ClientID
}

// get returns a valid access token for the credentials, fetching a fresh one
// when the cached token is absent or within the expiry buffer.
func (tc *tokenCache) get(ctx context.Context, tokenURL string, c Credentials) (string, error) {
	key := cacheKey(c)

	tc.mu.Lock()
	cached, ok := tc.tokens[key]
	tc.mu.Unlock()
	if ok && tc.now().Before(cached.expiresAt.Add(-tokenExpiryBuffer)) {
		return cached.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}

	tok := cachedToken{
		accessToken: body.AccessToken,
		expiresAt:   tc.now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}
	tc.mu.Lock()
	tc.tokens[key] = tok
	tc.mu.Unlock()
	return tok.accessToken, nil
}

// invalidate drops a tenant's cached token, forcing a refresh on next use.
func (tc *tokenCache) invalidate(c Credentials) {
	tc.mu.Lock()
	delete(tc.tokens, cacheKey(c))
	tc.mu.Unlock()
}
