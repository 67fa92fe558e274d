package api

import (
	"encoding/json"
	"time"
)

// envelope is the wire wrapper around every REST response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// refreshGrant is the payload of a successful POST /auth/refresh.
type refreshGrant struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	User             json.RawMessage `json:"user"`
	ExpiresIn        int64           `json:"expires_in"`
	RefreshExpiresIn int64           `json:"refresh_expires_in"`
}

// TTLs applied when the server omits expires_in / refresh_expires_in.
const (
	DefaultAccessTTL  = 900 * time.Second
	DefaultRefreshTTL = 30 * 24 * time.Hour
)
