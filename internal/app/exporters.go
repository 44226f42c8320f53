package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// icsLine writes one CRLF terminated content line and logs write errors
func icsLine(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format+"\r\n", args...); err != nil {
		log.Printf("Error writing to response: %v", err)
	}
}

// Reminder describes an optional VALARM for downloaded calendars
type Reminder struct {
	DaysBefore int
	Time       string
}

// reminderFromQuery reads reminder=true&reminderDays=N&reminderTime=HH:MM
func reminderFromQuery(r *http.Request) *Reminder {
	q := r.URL.Query()
	if q.Get("reminder") != "true" || q.Get("reminderTime") == "" {
		return nil
	}
	days, err := strconv.Atoi(q.Get("reminderDays"))
	if err != nil || days < 0 {
		days = 0
	}
	return &Reminder{DaysBefore: days, Time: q.Get("reminderTime")}
}

// writeEvent writes one all-day VEVENT; invalid dates are skipped
func writeEvent(w io.Writer, f festival.Festival, reminder *Reminder) {
	date, err := time.Parse("2006-01-02", f.Date)
	if err != nil {
		return
	}

	summary := icsEscaper.Replace(f.Name)

	icsLine(w, "BEGIN:VEVENT")
	// Stable UID so subscribed calendars update in place
	icsLine(w, "UID:%s-%s@%s", f.Date, slug(f.Name), ICSUIDDomain)
	icsLine(w, "DTSTAMP:%s", time.Now().UTC().Format("20060102T150405Z"))
	icsLine(w, "DTSTART;VALUE=DATE:%s", date.Format("20060102"))
	icsLine(w, "DTEND;VALUE=DATE:%s", date.AddDate(0, 0, 1).Format("20060102"))
	icsLine(w, "SUMMARY:%s", summary)
	icsLine(w, "CATEGORIES:%s", strings.ToUpper(string(f.Type)))
	icsLine(w, "TRANSP:TRANSPARENT")
	if reminder != nil {
		AddAlarm(w, date, reminder.DaysBefore, reminder.Time, summary)
	}
	icsLine(w, "END:VEVENT")
}

// GenerateICS generates an iCalendar (ICS) download with an optional reminder
func GenerateICS(w http.ResponseWriter, r *http.Request, label string, festivals []festival.Festival) {
	reminder := reminderFromQuery(r)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=festivals_%s.ics", label))

	icsLine(w, "BEGIN:VCALENDAR")
	icsLine(w, "VERSION:2.0")
	icsLine(w, "PRODID:%s", ICSProductID)
	icsLine(w, "X-WR-CALNAME:Festivals (%s)", label)
	icsLine(w, "X-WR-TIMEZONE:%s", ICSTimezone)
	icsLine(w, "CALSCALE:GREGORIAN")

	for _, f := range festivals {
		writeEvent(w, f, reminder)
	}

	icsLine(w, "END:VCALENDAR")
}

// AddAlarm adds a display alarm at alarmTime (HH:MM) daysBefore the event
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	hourStr, minuteStr, ok := strings.Cut(alarmTime, ":")
	if !ok {
		return
	}
	hour, err1 := strconv.Atoi(hourStr)
	minute, err2 := strconv.Atoi(minuteStr)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// Trigger is relative to the event start at 00:00
	alarmDate := eventDate.AddDate(0, 0, -daysBefore)
	alarmAt := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)

	totalMinutes := int(alarmAt.Sub(eventStart).Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	icsLine(w, "BEGIN:VALARM")
	icsLine(w, "ACTION:DISPLAY")
	icsLine(w, "DESCRIPTION:Reminder: %s", description)
	icsLine(w, "TRIGGER:%sP%dDT%dH%dM", sign, days, hours, minutes)
	icsLine(w, "END:VALARM")
}

// GenerateCSV generates a CSV file with festivals
func GenerateCSV(w http.ResponseWriter, label string, festivals []festival.Festival) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=festivals_%s.csv", label))

	cw := csv.NewWriter(w)
	records := [][]string{{"date", "name", "type"}}
	for _, f := range festivals {
		records = append(records, []string{f.Date, f.Name, string(f.Type)})
	}
	if err := cw.WriteAll(records); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// GenerateJSON generates a JSON file with festivals
func GenerateJSON(w http.ResponseWriter, label string, festivals []festival.Festival) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=festivals_%s.json", label))

	data := map[string]interface{}{
		"filter":    label,
		"count":     len(festivals),
		"festivals": festivals,
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}

// GenerateSubscriptionICS generates an iCalendar (ICS) subscription feed
// Unlike GenerateICS, this is designed for calendar subscriptions:
// - No Content-Disposition attachment header (inline content)
// - No VALARM blocks (most calendar apps ignore them in subscriptions)
// - Includes METHOD:PUBLISH and refresh interval headers
func GenerateSubscriptionICS(w http.ResponseWriter, r *http.Request, festivals []festival.Festival) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	icsLine(w, "BEGIN:VCALENDAR")
	icsLine(w, "VERSION:2.0")
	icsLine(w, "PRODID:%s", ICSProductID)
	icsLine(w, "METHOD:PUBLISH")
	icsLine(w, "X-WR-CALNAME:Festivals")
	icsLine(w, "X-WR-TIMEZONE:%s", ICSTimezone)
	icsLine(w, "CALSCALE:GREGORIAN")
	icsLine(w, "X-PUBLISHED-TTL:PT1H")

	for _, f := range festivals {
		writeEvent(w, f, nil)
	}

	icsLine(w, "END:VCALENDAR")
}
