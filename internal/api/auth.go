package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client reads from its access token. The token
// is not verified; the service does that.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Authenticated reports whether a token has been obtained.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// TokenInfo returns the decoded claims of the access token, or nil when
// the client has no token or the token is not a JWT.
func (c *Client) TokenInfo() *TokenInfo {
	return c.tokenInfo
}

// Authenticate exchanges the configured credentials for a bearer token.
// It does nothing without credentials or when a token is already held.
func (c *Client) Authenticate(ctx context.Context) error {
	const op errors.Op = "api.Authenticate"

	if c.Username == "" || c.token != "" {
		return nil
	}

	creds := map[string]string{"username": c.Username, "password": c.Password}
	resp, body, err := c.do(ctx, http.MethodPost, c.BaseURL+"/auth/login", creds)
	if err != nil {
		return errors.E(op, errors.KindNetwork, err, "login request failed")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.E(op, errors.KindAuth, &StatusError{Code: resp.StatusCode, Body: body}, "authentication failed")
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return errors.E(op, errors.KindAuth, err, "invalid login response")
	}
	if result.AccessToken == "" {
		return errors.E(op, errors.KindAuth, "login response has no access_token")
	}

	c.token = result.AccessToken
	c.tokenInfo = decodeToken(result.AccessToken)
	return nil
}

func decodeToken(raw string) *TokenInfo {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	info := &TokenInfo{}
	if sub, err := token.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
