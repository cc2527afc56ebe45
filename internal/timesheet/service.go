// Package timesheet validates submitted work hours and renders the CSV export.
package timesheet

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

const (
	// MaxHours is the most a single entry may record.
	MaxHours = 24
	// BackdateMonths is how many calendar months into the past an entry may be dated.
	BackdateMonths = 2
)

// Store is the entry storage the service writes to and exports from.
type Store interface {
	AddEntry(entry *model.Entry) error
	GetAllEntries() []model.Entry
}

// Service is the timesheet business-rule gatekeeper.
type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the source of "now" used for the date window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone in which "today" is determined.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService returns a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddEntry validates the submitted fields and stores a new entry.
// Invalid input yields a *model.ValidationError and leaves the store untouched.
// A user may log several entries on the same day; there is no daily cap.
func (s *Service) AddEntry(user string, date civil.Date, project, description string, hours float64) (model.Entry, error) {
	if err := s.validate(user, date, project, description, hours); err != nil {
		return model.Entry{}, err
	}

	entry := model.Entry{
		ID:          uuid.New(),
		User:        user,
		Date:        date,
		Project:     project,
		Description: description,
		Hours:       hours,
	}
	if err := s.store.AddEntry(&entry); err != nil {
		return model.Entry{}, fmt.Errorf("add entry: %w", err)
	}
	return entry, nil
}

// GetAllEntries returns every stored entry in insertion order.
func (s *Service) GetAllEntries() []model.Entry {
	entries := s.store.GetAllEntries()
	if entries == nil {
		return []model.Entry{}
	}
	return entries
}

func (s *Service) validate(user string, date civil.Date, project, description string, hours float64) error {
	if isBlank(user) {
		return model.NewValidationError("User name is required.")
	}
	if isBlank(project) {
		return model.NewValidationError("Project is required.")
	}
	if isBlank(description) {
		return model.NewValidationError("Description is required.")
	}

	// The negated form also rejects NaN.
	if !(hours > 0 && hours <= MaxHours) {
		return model.NewValidationError(fmt.Sprintf("Hours worked must be greater than 0 and at most %d.", MaxHours))
	}

	if !date.IsValid() {
		return model.NewValidationError("Invalid date provided.")
	}
	today := timecalc.Today(s.now(), s.loc)
	if date.After(today) {
		return model.NewValidationError("Date cannot be in the future.")
	}
	earliest := timecalc.MonthsBefore(today, BackdateMonths)
	if date.Before(earliest) {
		return model.NewValidationError(fmt.Sprintf("Date cannot be earlier than %s.", earliest))
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
