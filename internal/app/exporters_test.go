package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

func testFestivals() []festival.Festival {
	return []festival.Festival{
		{Name: "Republic Day", Date: "2025-01-26", Type: festival.TypeNational},
		{Name: "Diwali", Date: "2025-10-20", Type: festival.TypeReligious},
	}
}

func TestGenerateICS(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?format=ics&reminder=true&reminderDays=1&reminderTime=09:00", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "all", testFestivals())

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename=festivals_all.ics" {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR\r\n",
		"DTSTART;VALUE=DATE:20251020",
		"DTEND;VALUE=DATE:20251021",
		"SUMMARY:Diwali",
		"SUMMARY:Republic Day",
		"CATEGORIES:RELIGIOUS",
		"CATEGORIES:NATIONAL",
		"UID:2025-10-20-diwali@" + ICSUIDDomain,
		"UID:2025-01-26-republic-day@" + ICSUIDDomain,
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %q", field)
		}
	}

	// One reminder per festival
	if n := strings.Count(body, "BEGIN:VALARM"); n != 2 {
		t.Errorf("Expected 2 alarms, got %d", n)
	}
	if !strings.Contains(body, "TRIGGER:-P0DT15H0M") {
		t.Error("Alarm at 09:00 the day before should trigger 15 hours early")
	}
}

func TestGenerateICS_NoReminder(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?format=ics", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "all", testFestivals())

	if n := strings.Count(w.Body.String(), "BEGIN:VALARM"); n != 0 {
		t.Errorf("Expected no alarms without reminder=true, got %d", n)
	}
}

func TestGenerateICS_EscapesText(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/download?format=ics", nil)
	w := httptest.NewRecorder()

	GenerateICS(w, req, "all", []festival.Festival{
		{Name: "Bread, Wine; Song", Date: "2025-09-01", Type: festival.TypeCultural},
	})

	if !strings.Contains(w.Body.String(), `SUMMARY:Bread\, Wine\; Song`) {
		t.Errorf("SUMMARY should be escaped, got:\n%s", w.Body.String())
	}
}

func TestAddAlarm(t *testing.T) {
	eventDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		daysBefore  int
		alarmTime   string
		wantTrigger string
	}{
		{name: "2 days before at 18:00", daysBefore: 2, alarmTime: "18:00", wantTrigger: "TRIGGER:-P1DT6H0M"},
		{name: "1 day before at 19:30", daysBefore: 1, alarmTime: "19:30", wantTrigger: "TRIGGER:-P0DT4H30M"},
		{name: "Same day at 07:00", daysBefore: 0, alarmTime: "07:00", wantTrigger: "TRIGGER:P0DT7H0M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			AddAlarm(&buf, eventDate, tt.daysBefore, tt.alarmTime, "Diwali")
			output := buf.String()

			if !strings.Contains(output, tt.wantTrigger) {
				t.Errorf("Expected %s, got:\n%s", tt.wantTrigger, output)
			}
			if !strings.Contains(output, "DESCRIPTION:Reminder: Diwali") {
				t.Error("Alarm missing description")
			}
		})
	}
}

func TestAddAlarm_InvalidTime(t *testing.T) {
	eventDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, alarmTime := range []string{"invalid", "25:00", "12:99", "aa:bb", "1800"} {
		var buf bytes.Buffer
		AddAlarm(&buf, eventDate, 1, alarmTime, "Diwali")
		if buf.Len() != 0 {
			t.Errorf("Invalid time %q should not produce an alarm, got:\n%s", alarmTime, buf.String())
		}
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()

	GenerateCSV(w, "all", append(testFestivals(), festival.Festival{
		Name: "Bread, Wine", Date: "2025-09-01", Type: festival.TypeCultural,
	}))

	if ct := w.Result().Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", ct)
	}

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "date,name,type" {
		t.Errorf("Unexpected header %v", records[0])
	}
	if records[3][1] != "Bread, Wine" {
		t.Errorf("Name with comma should round-trip, got %q", records[3][1])
	}
}

func TestGenerateJSON(t *testing.T) {
	w := httptest.NewRecorder()

	GenerateJSON(w, "religious", testFestivals())

	var got struct {
		Filter    string              `json:"filter"`
		Count     int                 `json:"count"`
		Festivals []festival.Festival `json:"festivals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got.Filter != "religious" || got.Count != 2 || len(got.Festivals) != 2 {
		t.Errorf("Unexpected export: %+v", got)
	}
	if cd := w.Result().Header.Get("Content-Disposition"); !strings.Contains(cd, "festivals_religious.json") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
}
