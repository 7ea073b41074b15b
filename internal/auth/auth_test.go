package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"trainingload/internal/store"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		status   int
		wantCode string
		wantErr  bool
	}{
		{"success", "state=abc&code=xyz", http.StatusOK, "xyz", false},
		{"state mismatch", "state=evil&code=xyz", http.StatusBadRequest, "", true},
		{"denied", "state=abc&error=access_denied", http.StatusBadRequest, "", true},
		{"missing code", "state=abc", http.StatusBadRequest, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			handler := callbackHandler("abc", codeChan, errChan)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)

			if tt.wantErr {
				assert.Len(t, errChan, 1)
				assert.Empty(t, codeChan)
				return
			}
			assert.Equal(t, tt.wantCode, <-codeChan)
		})
	}
}

func TestExtractAthleteID(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(1234)},
	})
	assert.Equal(t, int64(1234), ExtractAthleteID(token))
	assert.Zero(t, ExtractAthleteID(&oauth2.Token{}))
}

func tokenServer(t *testing.T, refreshes *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		*refreshes++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"new-access-%d","refresh_token":"new-refresh","token_type":"Bearer","expires_in":21600}`, *refreshes)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStoredTokenSourceRefreshes(t *testing.T) {
	var refreshes int
	server := tokenServer(t, &refreshes)

	db := store.NewTestStore(t)
	cfg := NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret"})
	cfg.Endpoint.TokenURL = server.URL

	_, err := StoredTokenSource(db, "alice", cfg)
	assert.ErrorIs(t, err, store.ErrNoAuth)

	require.NoError(t, Save(db, "alice", &AuthResult{
		AthleteID: 7,
		Token: &oauth2.Token{
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			Expiry:       time.Now().Add(30 * time.Second),
		},
	}))

	ts, err := StoredTokenSource(db, "alice", cfg)
	require.NoError(t, err)
	assert.True(t, ts.IsExpired())

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access-1", token.AccessToken)
	assert.False(t, ts.IsExpired())

	// fresh tokens are not refreshed again
	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, refreshes)

	saved, err := db.GetAuth("alice")
	require.NoError(t, err)
	assert.Equal(t, "new-access-1", saved.AccessToken)
	assert.Equal(t, "new-refresh", saved.RefreshToken)
	assert.Equal(t, int64(7), saved.AthleteID)

	// tokens belong to one athlete only
	_, err = StoredTokenSource(db, "bob", cfg)
	assert.ErrorIs(t, err, store.ErrNoAuth)
}

func TestTokenSourceValidToken(t *testing.T) {
	token := &oauth2.Token{AccessToken: "valid", Expiry: time.Now().Add(time.Hour)}
	ts := NewTokenSource(&oauth2.Config{}, token, func(*oauth2.Token) error {
		t.Fatal("unexpected refresh")
		return nil
	})

	got, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "valid", got.AccessToken)
}
