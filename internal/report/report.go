// Package report builds shareable summaries of a set of activities, such as
// an email draft for circulating the week's agenda.
package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"agendad/internal/model"
)

// Draft is a ready-to-send plain-text email.
type Draft struct {
	Subject string
	Body    string
}

var typeLabels = map[model.Type]string{
	model.TypeActivity:      "Activity",
	model.TypeMeeting:       "Meeting",
	model.TypeCommemoration: "Commemoration",
	model.TypeReminder:      "Reminder",
}

// BuildEmailDraft renders the selected activities as an email, earliest date
// first. An empty selection still produces a valid draft saying so.
func BuildEmailDraft(selection []model.Activity, now time.Time) Draft {
	sorted := make([]model.Activity, len(selection))
	copy(sorted, selection)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Time < sorted[j].Time
	})

	subject := fmt.Sprintf("School activities - %s", now.Format("January 2, 2006"))

	var b strings.Builder
	b.WriteString("Hello,\n\n")
	if len(sorted) == 0 {
		b.WriteString("There are no scheduled activities to report.\n")
	} else {
		fmt.Fprintf(&b, "Here are the scheduled activities (%d):\n\n", len(sorted))
		for _, a := range sorted {
			fmt.Fprintf(&b, "- %s [%s]\n", a.Title, typeLabels[a.Type])
			fmt.Fprintf(&b, "  Date: %s", formatDate(a.Date))
			if a.EndDate != "" && a.EndDate != a.Date {
				fmt.Fprintf(&b, " to %s", formatDate(a.EndDate))
			}
			if a.Time != "" {
				fmt.Fprintf(&b, " at %s", a.Time)
			}
			b.WriteString("\n")
			if a.Description != "" {
				fmt.Fprintf(&b, "  %s\n", a.Description)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("Regards\n")

	return Draft{Subject: subject, Body: b.String()}
}

// Mailto encodes a draft as a mailto URL for handing to the OS opener.
// Mail clients expect %20 for spaces, not the form-encoding plus sign.
func Mailto(d Draft) string {
	return "mailto:?subject=" + mailtoEscape(d.Subject) + "&body=" + mailtoEscape(d.Body)
}

func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatDate(day string) string {
	t, err := time.Parse(model.DateLayout, day)
	if err != nil {
		return day
	}
	return t.Format("Mon, Jan 2 2006")
}
