package entity

import (
	"fmt"
	"strings"
)

const anonymousName = "Anonymous"

// Profile is captured at the first stage and never changes until the session restarts.
type Profile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Age        string `json:"age"`
	Occupation string `json:"occupation"`
	Reason     string `json:"reason"`
}

// Text renders the profile in the plain-text form the screening backend expects.
func (p Profile) Text() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nAge: %s\nOccupation: %s\nReason for visit: %s",
		p.Name, p.Email, p.Age, p.Occupation, p.Reason)
}

// WithDefaults returns a copy of the profile with an anonymous name when none was given.
func (p Profile) WithDefaults() Profile {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = anonymousName
	}
	return p
}

// Normalize trims surrounding whitespace from every field.
func (p Profile) Normalize() Profile {
	return Profile{
		Name:       strings.TrimSpace(p.Name),
		Email:      strings.TrimSpace(p.Email),
		Age:        strings.TrimSpace(p.Age),
		Occupation: strings.TrimSpace(p.Occupation),
		Reason:     strings.TrimSpace(p.Reason),
	}
}
