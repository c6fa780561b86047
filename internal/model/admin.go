package model

import "time"

// AdminSession is the server-side state of one admin login. It exists from
// a successful login until logout or expiry.
type AdminSession struct {
	ID        string    `json:"id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the session is still usable at now.
func (s *AdminSession) Active(now time.Time) bool {
	return s != nil && s.ID != "" && now.Before(s.ExpiresAt)
}

// AdminLoginRequest is the payload for the shared-password admin login.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}
