package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/civic-registry/internal/election"
	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

// resetState gives each test a fresh global state
func resetState(t *testing.T) {
	t.Helper()
	Festivals = festival.NewManager()
	Elections.Close()
	Elections = NewRegistry()
	EditMode = false
	editCredentials = nil
	VoterRules = election.Rules{MinAge: election.DefaultMinAge}
	t.Cleanup(func() {
		Elections.Close()
		EditMode = false
		editCredentials = nil
		VoterRules = election.Rules{MinAge: election.DefaultMinAge}
	})
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestAddFestival(t *testing.T) {
	resetState(t)
	EditMode = true

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCount  int
	}{
		{name: "Valid", body: `{"name":"Diwali","date":"2025-10-20","type":"religious"}`, wantStatus: http.StatusOK, wantCount: 1},
		{name: "Duplicate", body: `{"name":"Diwali","date":"2025-10-20","type":"religious"}`, wantStatus: http.StatusBadRequest},
		{name: "Bad date", body: `{"name":"Holi","date":"14.03.2025","type":"religious"}`, wantStatus: http.StatusBadRequest},
		{name: "Bad type", body: `{"name":"Holi","date":"2025-03-14","type":"sporting"}`, wantStatus: http.StatusBadRequest},
		{name: "Broken JSON", body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "Second valid", body: `{"name":"Republic Day","date":"2025-01-26","type":"national"}`, wantStatus: http.StatusOK, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/festivals/add", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			AddFestival(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				got := decodeBody[map[string]any](t, w)
				if got["count"] != float64(tt.wantCount) {
					t.Errorf("Expected count %d, got %v", tt.wantCount, got["count"])
				}
			}
		})
	}
}

func TestAddFestival_RequiresEditMode(t *testing.T) {
	resetState(t)

	req := httptest.NewRequest("POST", "/api/festivals/add", strings.NewReader(`{"name":"Diwali","date":"2025-10-20","type":"religious"}`))
	w := httptest.NewRecorder()
	AddFestival(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 outside edit mode, got %d", w.Code)
	}
	if Festivals.Count() != 0 {
		t.Error("Festival should not be added outside edit mode")
	}

	w = httptest.NewRecorder()
	AddFestival(w, httptest.NewRequest("GET", "/api/festivals/add", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}
}

func TestDeleteFestival(t *testing.T) {
	resetState(t)
	EditMode = true
	Festivals.Add("Diwali", "2025-10-20", festival.TypeReligious)

	w := httptest.NewRecorder()
	DeleteFestival(w, httptest.NewRequest("POST", "/api/festivals/delete", strings.NewReader(`{"name":"Diwali"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	DeleteFestival(w, httptest.NewRequest("POST", "/api/festivals/delete", strings.NewReader(`{"name":"Diwali"}`)))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for second delete, got %d", w.Code)
	}
}

func TestHandleFestivals(t *testing.T) {
	resetState(t)
	Festivals.Add("Diwali", "2025-10-20", festival.TypeReligious)
	Festivals.Add("Republic Day", "2025-01-26", festival.TypeNational)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantNames  []string
	}{
		{name: "All", url: "/api/festivals", wantStatus: http.StatusOK, wantNames: []string{"Diwali", "Republic Day"}},
		{name: "By type", url: "/api/festivals?type=national", wantStatus: http.StatusOK, wantNames: []string{"Republic Day"}},
		{name: "Empty type", url: "/api/festivals?type=cultural", wantStatus: http.StatusOK, wantNames: []string{}},
		{name: "Unknown type", url: "/api/festivals?type=sporting", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleFestivals(w, httptest.NewRequest("GET", tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			got := decodeBody[[]festival.Festival](t, w)
			if len(got) != len(tt.wantNames) {
				t.Fatalf("Expected %d festivals, got %d", len(tt.wantNames), len(got))
			}
			for i, name := range tt.wantNames {
				if got[i].Name != name {
					t.Errorf("got[%d] = %s, want %s", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestHandleUpcoming(t *testing.T) {
	resetState(t)
	Festivals.Add("Diwali", "2025-10-20", festival.TypeReligious)
	Festivals.Add("Republic Day", "2025-01-26", festival.TypeNational)
	Festivals.Add("Holi", "2025-03-14", festival.TypeReligious)
	Festivals.Add("Onam", "2025-09-05", festival.TypeCultural)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantNames  []string
	}{
		{name: "Default limit", url: "/api/festivals/upcoming?date=2025-01-01", wantStatus: http.StatusOK, wantNames: []string{"Republic Day", "Holi", "Onam"}},
		{name: "Explicit limit", url: "/api/festivals/upcoming?date=2025-01-01&n=1", wantStatus: http.StatusOK, wantNames: []string{"Republic Day"}},
		{name: "Bad date", url: "/api/festivals/upcoming?date=tomorrow", wantStatus: http.StatusBadRequest},
		{name: "Bad limit", url: "/api/festivals/upcoming?date=2025-01-01&n=x", wantStatus: http.StatusBadRequest},
		{name: "Negative limit", url: "/api/festivals/upcoming?date=2025-01-01&n=-2", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleUpcoming(w, httptest.NewRequest("GET", tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			got := decodeBody[[]festival.Festival](t, w)
			if len(got) != len(tt.wantNames) {
				t.Fatalf("Expected %d festivals, got %d", len(tt.wantNames), len(got))
			}
			for i, name := range tt.wantNames {
				if got[i].Name != name {
					t.Errorf("got[%d] = %s, want %s", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestHandleDownload(t *testing.T) {
	resetState(t)
	Festivals.Add("Diwali", "2025-10-20", festival.TypeReligious)
	Festivals.Add("Republic Day", "2025-01-26", festival.TypeNational)

	tests := []struct {
		name        string
		url         string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "ICS", url: "/api/download?format=ics", wantStatus: http.StatusOK, wantType: "text/calendar", wantContain: "SUMMARY:Diwali"},
		{name: "CSV filtered", url: "/api/download?format=csv&type=national", wantStatus: http.StatusOK, wantType: "text/csv", wantContain: "2025-01-26,Republic Day,national"},
		{name: "JSON", url: "/api/download?format=json", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"count":2`},
		{name: "Unknown format", url: "/api/download?format=pdf", wantStatus: http.StatusBadRequest},
		{name: "Unknown type", url: "/api/download?format=ics&type=sporting", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleDownload(w, httptest.NewRequest("GET", tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Result().Header.Get("Content-Type"); !strings.Contains(ct, tt.wantType) {
				t.Errorf("Expected Content-Type %s, got %s", tt.wantType, ct)
			}
			if !strings.Contains(w.Body.String(), tt.wantContain) {
				t.Errorf("Body missing %q:\n%s", tt.wantContain, w.Body.String())
			}
			if tt.name == "CSV filtered" && strings.Contains(w.Body.String(), "Diwali") {
				t.Error("Type filter not applied to CSV export")
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	resetState(t)
	EditMode = true

	w := httptest.NewRecorder()
	GetConfig(w, httptest.NewRequest("GET", "/api/config", nil))

	var got struct {
		FestivalTypes []string            `json:"festivalTypes"`
		UpcomingLimit int                 `json:"upcomingLimit"`
		EditMode      bool                `json:"editMode"`
		MovableFeasts []festival.Festival `json:"movableFeasts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if len(got.FestivalTypes) != 3 {
		t.Errorf("Expected 3 festival types, got %v", got.FestivalTypes)
	}
	if got.UpcomingLimit != 3 {
		t.Errorf("Expected upcoming limit 3, got %d", got.UpcomingLimit)
	}
	if !got.EditMode {
		t.Error("Expected editMode true")
	}
	year := time.Now().Format("2006")
	if len(got.MovableFeasts) != 7 || !strings.HasPrefix(got.MovableFeasts[0].Date, year) {
		t.Errorf("Expected movable feasts of %s, got %+v", year, got.MovableFeasts)
	}
}

func TestHandleValidateVoter(t *testing.T) {
	resetState(t)
	VoterRules = election.Rules{MinAge: 16, RequiredFields: []string{"id", "name"}}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       election.Validation
	}{
		{name: "Valid", body: `{"id":"v1","name":"Dana","age":16}`, wantStatus: http.StatusOK, want: election.Validation{Valid: true}},
		{name: "Missing name", body: `{"id":"v1","age":30}`, wantStatus: http.StatusOK, want: election.Validation{Reason: "missing_name"}},
		{name: "Underage", body: `{"id":"v1","name":"Dana","age":15}`, wantStatus: http.StatusOK, want: election.Validation{Reason: "underage"}},
		{name: "String age", body: `{"id":"v1","name":"Dana","age":"40"}`, wantStatus: http.StatusOK, want: election.Validation{Reason: "underage"}},
		{name: "Null voter", body: `null`, wantStatus: http.StatusOK, want: election.Validation{Reason: "invalid_voter"}},
		{name: "Not an object", body: `[1,2]`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleValidateVoter(w, httptest.NewRequest("POST", "/api/voters/validate", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := decodeBody[election.Validation](t, w); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestHandleCountRegions(t *testing.T) {
	resetState(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "Nested",
			body: `{"votes":5,"subRegions":[{"votes":3,"subRegions":[]},{"votes":2,"subRegions":[{"votes":1,"subRegions":[]}]}]}`,
			want: 11,
		},
		{name: "Null", body: `null`, want: 0},
		{name: "Lenient", body: `{"votes":"x","subRegions":[{"votes":4}]}`, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleCountRegions(w, httptest.NewRequest("POST", "/api/regions/count", strings.NewReader(tt.body)))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got := decodeBody[map[string]int](t, w)["votes"]; got != tt.want {
				t.Errorf("Expected %d votes, got %d", tt.want, got)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Diwali":           "diwali",
		"Republic Day":     "republic-day",
		"  Bread, Wine  ":  "bread-wine",
		"Tag der Einheit!": "tag-der-einheit",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
