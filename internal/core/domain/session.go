package domain

import "time"

// Session describes the current bearer token and the user it carries.
type Session struct {
	Token     string
	Subject   string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the session carries an expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
