package auth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"trainingload/internal/store"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required to read private rides (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
}

// ExtractAthleteID extracts the athlete ID from the token extras
// Strava includes athlete info in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// Save stores the tokens of a successful authentication for athlete.
func Save(db *store.DB, athlete string, result *AuthResult) error {
	return db.SaveAuth(&store.Auth{
		Athlete:      athlete,
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	})
}

// StoredTokenSource loads the tokens saved for athlete and returns a
// TokenSource that writes refreshed tokens back to the store. The error
// wraps store.ErrNoAuth when the athlete has not authenticated yet.
func StoredTokenSource(db *store.DB, athlete string, cfg *oauth2.Config) (*TokenSource, error) {
	saved, err := db.GetAuth(athlete)
	if errors.Is(err, store.ErrNoAuth) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       saved.ExpiresAt,
	}
	return NewTokenSource(cfg, token, func(t *oauth2.Token) error {
		return db.UpdateTokens(athlete, t.AccessToken, t.RefreshToken, t.Expiry)
	}), nil
}
