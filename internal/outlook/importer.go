package outlook

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

// Submitter records timesheet entries, usually a running timesheet server.
type Submitter interface {
	AddEntry(ctx context.Context, in model.EntryInput) (model.Entry, error)
	Entries(ctx context.Context) ([]model.Entry, error)
}

// ImportResult holds counters for an import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Rejected int
	Errors   int
}

// ImportOptions configures an import run.
type ImportOptions struct {
	User     string
	Project  string
	Timezone string
	DryRun   bool
	Out      io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildDescription combines subject and location into an entry description.
func buildDescription(event CalendarEvent) string {
	subject := strings.TrimSpace(event.Subject)
	if subject == "" {
		subject = "(no subject)"
	}
	if loc := strings.TrimSpace(event.Location.DisplayName); loc != "" {
		return subject + "\n" + loc
	}
	return subject
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// MapEvent converts a Graph CalendarEvent into an entry for user on project.
// Hours are the event duration rounded to two decimal places.
func MapEvent(event CalendarEvent, timezone, user, project string) (model.EntryInput, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.EntryInput{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.EntryInput{}, fmt.Errorf("parsing end time: %w", err)
	}
	dur := end.Sub(start)
	if dur <= 0 {
		return model.EntryInput{}, fmt.Errorf("event ends before it starts")
	}

	return model.EntryInput{
		User:        user,
		Date:        civil.DateOf(start),
		Project:     project,
		Description: buildDescription(event),
		Hours:       decimal.NewFromFloat(dur.Hours()).Round(2).InexactFloat64(),
	}, nil
}

func sameEntry(e model.Entry, in model.EntryInput) bool {
	return e.User == in.User && e.Date == in.Date && e.Project == in.Project &&
		e.Description == in.Description && e.Hours == in.Hours
}

// Import submits events as timesheet entries. Events already recorded with
// identical fields are skipped, so repeating an import is harmless.
// Entries the server refuses are counted as rejected and do not stop the run.
func Import(ctx context.Context, events []CalendarEvent, opts ImportOptions, sub Submitter) (ImportResult, error) {
	var result ImportResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	existing, err := sub.Entries(ctx)
	if err != nil {
		return result, fmt.Errorf("loading existing entries: %w", err)
	}

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		in, err := MapEvent(event, opts.Timezone, opts.User, opts.Project)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		duplicate := false
		for _, e := range existing {
			if sameEntry(e, in) {
				duplicate = true
				break
			}
		}
		if duplicate {
			fmt.Fprintf(out, "  - Skipped:  %s (already exists)\n", event.Subject)
			result.Skipped++
			continue
		}

		hours := timecalc.FormatHours(in.Hours)
		if opts.DryRun {
			fmt.Fprintf(out, "  ✓ Would import: %s %s (%sh)\n", in.Date, event.Subject, hours)
			result.Imported++
			continue
		}

		created, err := sub.AddEntry(ctx, in)
		if err != nil {
			if model.IsValidation(err) {
				fmt.Fprintf(out, "  x Rejected: %s (%v)\n", event.Subject, err)
				result.Rejected++
				continue
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			fmt.Fprintf(out, "  ! Error saving %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		existing = append(existing, created)
		fmt.Fprintf(out, "  ✓ Imported: %s %s (%sh)\n", in.Date, event.Subject, hours)
		result.Imported++
	}

	return result, nil
}
