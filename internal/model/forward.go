// Package model defines shared types for the relay.
package model

import (
	"net/http"
	"time"
)

// Outbound header names and the fixed media type sent downstream.
const (
	HeaderSecurityToken = "X-Security-Token"
	ContentTypeJSON     = "application/json"
)

// ForwardResult describes one completed downstream attempt. It is only
// produced when the destination answered; transport failures are returned
// as errors instead.
type ForwardResult struct {
	StatusCode int
	Header     http.Header
	// Body holds at most the configured number of response bytes, kept for
	// diagnostics only.
	Body       []byte
	Truncated  bool
	Duration   time.Duration
}

// Delivered reports whether the destination accepted the payload (2xx).
func (r *ForwardResult) Delivered() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
