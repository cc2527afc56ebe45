package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/a-h/templ"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/timecalc"
)

const (
	msgInvalidDate  = "Invalid date provided."
	msgInvalidHours = "Hours worked must be a number."
	msgTryLater     = "Something went wrong, please try again later."
)

// handleHealthCheck reports liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleIndex renders the entry form with the outcome of the last submission.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{
		Today:   timecalc.Today(s.now(), s.loc),
		Error:   q.Get("error"),
		Added:   q.Get("added") == "1",
		Entries: len(s.timesheet.GetAllEntries()),
	}
	templ.Handler(entryPage(data)).ServeHTTP(w, r)
}

// entryForm is the raw content of a submitted entry form.
type entryForm struct {
	User        string
	Date        civil.Date
	Project     string
	Description string
	Hours       float64
}

// parseEntryForm converts the form's year/month/day and hours fields.
// Conversion failures are reported as validation errors.
func parseEntryForm(r *http.Request) (*entryForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, model.NewValidationError("Invalid form submission.")
	}

	date, err := formDate(r.PostForm.Get("year"), r.PostForm.Get("month"), r.PostForm.Get("day"))
	if err != nil {
		return nil, err
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("hoursWorked")), 64)
	if err != nil {
		return nil, model.NewValidationError(msgInvalidHours)
	}

	return &entryForm{
		User:        r.PostForm.Get("userName"),
		Date:        date,
		Project:     r.PostForm.Get("project"),
		Description: r.PostForm.Get("description"),
		Hours:       hours,
	}, nil
}

// formDate builds a calendar date from its textual parts, rejecting
// impossible dates such as day 3000 or 30 February.
func formDate(year, month, day string) (civil.Date, error) {
	var parts [3]int
	for i, v := range []string{year, month, day} {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return civil.Date{}, model.NewValidationError(msgInvalidDate)
		}
		parts[i] = n
	}
	d := civil.Date{Year: parts[0], Month: time.Month(parts[1]), Day: parts[2]}
	if !d.IsValid() {
		return civil.Date{}, model.NewValidationError(msgInvalidDate)
	}
	return d, nil
}

// handleAddEntryForm handles the HTML form and redirects back to the index.
func (s *Server) handleAddEntryForm(w http.ResponseWriter, r *http.Request) {
	form, err := parseEntryForm(r)
	if err == nil {
		_, err = s.timesheet.AddEntry(form.User, form.Date, form.Project, form.Description, form.Hours)
	}

	target := "/?added=1"
	if err != nil {
		target = "/?error=" + url.QueryEscape(userMessage(err))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// userMessage maps err to text that is safe to show. Unexpected failures are
// logged and replaced by a generic message.
func userMessage(err error) string {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	log.Printf("Error adding entry: %v", err)
	return msgTryLater
}

// handleCSV serves the export as a downloadable timesheet.csv.
func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	body := s.timesheet.GenerateCsvOutput()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("Error writing csv: %v", err)
	}
}

// handleListEntries returns every entry as JSON in insertion order.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.timesheet.GetAllEntries(), http.StatusOK)
}

// handleCreateEntry is the JSON counterpart of the entry form.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var in model.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	entry, err := s.timesheet.AddEntry(in.User, in.Date, in.Project, in.Description, in.Hours)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeJSONError(w, ve.Message, http.StatusBadRequest)
			return
		}
		log.Printf("Error creating entry: %v", err)
		writeJSONError(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, entry, http.StatusCreated)
}
