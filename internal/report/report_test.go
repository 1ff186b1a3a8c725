package report

import (
	"strings"
	"testing"
	"time"

	"agendad/internal/model"
)

func draftTime(t *testing.T) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, "2024-03-01T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return at
}

func TestBuildEmailDraftSortsByDate(t *testing.T) {
	selection := []model.Activity{
		{ID: "2", Title: "Later", Type: model.TypeMeeting, Date: "2024-03-20"},
		{ID: "1", Title: "Sooner", Type: model.TypeActivity, Date: "2024-03-10", Time: "09:00"},
	}

	d := BuildEmailDraft(selection, draftTime(t))
	if d.Subject != "School activities - March 1, 2024" {
		t.Errorf("subject = %q", d.Subject)
	}
	sooner := strings.Index(d.Body, "Sooner")
	later := strings.Index(d.Body, "Later")
	if sooner < 0 || later < 0 || sooner > later {
		t.Errorf("body order wrong:\n%s", d.Body)
	}
	if !strings.Contains(d.Body, "at 09:00") {
		t.Errorf("time missing from body:\n%s", d.Body)
	}
	if !strings.Contains(d.Body, "[Meeting]") {
		t.Errorf("type label missing from body:\n%s", d.Body)
	}
}

func TestBuildEmailDraftMultiDaySpan(t *testing.T) {
	selection := []model.Activity{
		{ID: "1", Title: "Science Week", Type: model.TypeActivity, Date: "2024-03-10", EndDate: "2024-03-14"},
	}
	d := BuildEmailDraft(selection, draftTime(t))
	if !strings.Contains(d.Body, "to Thu, Mar 14 2024") {
		t.Errorf("span end missing:\n%s", d.Body)
	}
}

func TestBuildEmailDraftEmptySelection(t *testing.T) {
	d := BuildEmailDraft(nil, draftTime(t))
	if !strings.Contains(d.Body, "no scheduled activities") {
		t.Errorf("empty draft body = %q", d.Body)
	}
}

func TestMailtoEscapesSpacesAsPercent20(t *testing.T) {
	u := Mailto(Draft{Subject: "Week plan", Body: "Hello,\n\nRegards"})
	if !strings.HasPrefix(u, "mailto:?subject=Week%20plan&body=") {
		t.Errorf("url = %q", u)
	}
	if strings.Contains(u, "+") {
		t.Errorf("form-encoded plus in %q", u)
	}
	if !strings.Contains(u, "%0A") {
		t.Errorf("newlines not percent-encoded in %q", u)
	}
}
