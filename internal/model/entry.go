package model

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Entry is a single validated record of hours worked. Entries are never
// mutated after the service has created them.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	User        string     `json:"user"`
	Date        civil.Date `json:"date"`
	Project     string     `json:"project"`
	Description string     `json:"description"`
	Hours       float64    `json:"hours"`
}

// EntryInput is the payload of an add request as submitted over the JSON API.
type EntryInput struct {
	User        string     `json:"user"`
	Date        civil.Date `json:"date"`
	Project     string     `json:"project"`
	Description string     `json:"description"`
	Hours       float64    `json:"hours"`
}
