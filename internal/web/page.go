package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/a-h/templ"
)

type pageData struct {
	Today   civil.Date
	Error   string
	Added   bool
	Entries int
}

// entryPage renders the submission form. Every dynamic value goes through
// templ.EscapeString.
func entryPage(d pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Timesheet</title>
</head>
<body>
<h1>Timesheet</h1>
`)
		switch {
		case d.Error != "":
			fmt.Fprintf(&b, "<p class=\"error\" role=\"alert\">%s</p>\n", templ.EscapeString(d.Error))
		case d.Added:
			b.WriteString("<p class=\"success\">Entry added.</p>\n")
		}

		b.WriteString(`<form method="post" action="/entries">
<label>User name <input name="userName" required></label>
<fieldset>
<legend>Date</legend>
`)
		fmt.Fprintf(&b, "<label>Year <input name=\"year\" type=\"number\" value=\"%d\" required></label>\n", d.Today.Year)
		fmt.Fprintf(&b, "<label>Month <input name=\"month\" type=\"number\" min=\"1\" max=\"12\" value=\"%d\" required></label>\n", int(d.Today.Month))
		fmt.Fprintf(&b, "<label>Day <input name=\"day\" type=\"number\" min=\"1\" max=\"31\" value=\"%d\" required></label>\n", d.Today.Day)
		b.WriteString(`</fieldset>
<label>Project <input name="project" required></label>
<label>Description <textarea name="description" required></textarea></label>
<label>Hours worked <input name="hoursWorked" type="number" step="0.01" min="0.01" max="24" required></label>
<button type="submit">Add entry</button>
</form>
`)
		fmt.Fprintf(&b, "<p><a href=\"/timesheet.csv\">Download timesheet.csv</a> (%d %s)</p>\n", d.Entries, plural(d.Entries, "entry", "entries"))
		b.WriteString("</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
