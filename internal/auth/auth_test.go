package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			assert.Equal(t, "the-code", r.Form.Get("code"))
			fmt.Fprint(w, `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"bearer","expires_in":3600,"athlete":{"id":77}}`)
		case "refresh_token":
			assert.Equal(t, "refresh-0", r.Form.Get("refresh_token"))
			fmt.Fprint(w, `{"access_token":"access-2","refresh_token":"refresh-2","token_type":"bearer","expires_in":3600}`)
		default:
			http.Error(w, "unsupported grant", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOAuthConfig(tokenURL, redirect string) *oauth2.Config {
	return NewOAuthConfig(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      "https://coach.example/oauth/authorize",
		TokenURL:     tokenURL,
		RedirectURL:  redirect,
	})
}

func TestExtractAthleteID(t *testing.T) {
	tok := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(1234)},
	})
	assert.Equal(t, int64(1234), ExtractAthleteID(tok))
	assert.Equal(t, int64(0), ExtractAthleteID(&oauth2.Token{AccessToken: "a"}))
	assert.Equal(t, int64(0), ExtractAthleteID(nil))
}

func TestTokenSourceReturnsFreshToken(t *testing.T) {
	var calls int
	srv := tokenServer(t, &calls)

	tok := &oauth2.Token{AccessToken: "access-0", RefreshToken: "refresh-0", Expiry: time.Now().Add(time.Hour)}
	ts := NewTokenSource(testOAuthConfig(srv.URL, ""), tok, nil)

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-0", got.AccessToken)
	assert.Zero(t, calls)
	assert.False(t, ts.IsExpired())
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	var calls int
	srv := tokenServer(t, &calls)

	tok := &oauth2.Token{AccessToken: "access-0", RefreshToken: "refresh-0", Expiry: time.Now().Add(30 * time.Second)}

	var persisted *oauth2.Token
	ts := NewTokenSource(testOAuthConfig(srv.URL, ""), tok, func(nt *oauth2.Token) error {
		persisted = nt
		return nil
	})
	assert.True(t, ts.IsExpired())

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.Equal(t, 1, calls)
	require.NotNil(t, persisted)
	assert.Equal(t, "refresh-2", persisted.RefreshToken)
	assert.Equal(t, "access-2", ts.CurrentToken().AccessToken)
}

func TestTokenSourcePersistFailure(t *testing.T) {
	var calls int
	srv := tokenServer(t, &calls)

	tok := &oauth2.Token{AccessToken: "access-0", RefreshToken: "refresh-0", Expiry: time.Now().Add(-time.Minute)}
	ts := NewTokenSource(testOAuthConfig(srv.URL, ""), tok, func(*oauth2.Token) error {
		return fmt.Errorf("disk full")
	})

	_, err := ts.Token()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "access-0", ts.CurrentToken().AccessToken)
}

func TestAuthenticateFlow(t *testing.T) {
	var calls int
	srv := tokenServer(t, &calls)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	callback := fmt.Sprintf("http://%s/callback", listener.Addr())
	cfg := testOAuthConfig(srv.URL, callback)

	pr, pw := io.Pipe()
	type outcome struct {
		res *AuthResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := authenticateOn(context.Background(), cfg, listener, pw, 5*time.Second)
		pw.Close()
		done <- outcome{res, err}
	}()

	var authURL string
	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "https://") {
			authURL = line
			break
		}
	}
	require.NotEmpty(t, authURL)
	go io.Copy(io.Discard, pr)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	resp, err := http.Get(callback + "?state=" + state + "&code=the-code")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, "access-1", got.res.Token.AccessToken)
	assert.Equal(t, int64(77), got.res.AthleteID)
}

func TestCallbackHandlerRejectsBadState(t *testing.T) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	h := callbackHandler("expected", codeChan, errChan)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, errChan, 1)
	assert.Contains(t, (<-errChan).Error(), "state mismatch")
	assert.Empty(t, codeChan)
}

func TestCallbackHandlerReportsProviderError(t *testing.T) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	h := callbackHandler("s", codeChan, errChan)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, (<-errChan).Error(), "access_denied")
}
