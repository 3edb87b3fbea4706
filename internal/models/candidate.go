package models

import "strings"

// Candidate is a prospective invitee read from the form source.
type Candidate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Key returns the normalized email used for roster comparisons.
func (c Candidate) Key() string {
	return EmailKey(c.Email)
}

// EmailKey normalizes an email address for set membership checks.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
