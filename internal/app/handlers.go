package app

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/klabast/wb-services/civic-registry/internal/election"
	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

// GetConfig returns the application configuration
func GetConfig(w http.ResponseWriter, r *http.Request) {
	config := map[string]interface{}{
		"festivalTypes": festival.Types,
		"upcomingLimit": festival.DefaultUpcomingLimit,
		"editMode":      EditMode,
		"movableFeasts": festival.MovableFeasts(time.Now().Year()),
		"voterRules":    VoterRules,
		"elections":     Elections.IDs(),
	}
	writeJSON(w, http.StatusOK, config)
}

// HandleFestivals lists festivals, optionally filtered by type
// Query param: type (optional)
func HandleFestivals(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	festivals, ok := festivalsForQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, festivals)
}

// HandleUpcoming returns the next festivals from a date
// Query params: date (YYYY-MM-DD, defaults to today), n (defaults to 3)
func HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = today()
	}
	if !festival.IsDate(date) {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	n := festival.DefaultUpcomingLimit
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		var err error
		n, err = strconv.Atoi(nStr)
		if err != nil || n < 0 {
			http.Error(w, ErrInvalidLimit, http.StatusBadRequest)
			return
		}
	}

	FestivalMutex.RLock()
	upcoming := Festivals.Upcoming(date, n)
	FestivalMutex.RUnlock()

	writeJSON(w, http.StatusOK, upcoming)
}

// AddFestival adds a festival (edit mode only)
func AddFestival(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireEditMode(w) {
		return
	}

	var req festival.Festival
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	FestivalMutex.Lock()
	count := Festivals.Add(req.Name, req.Date, req.Type)
	FestivalMutex.Unlock()

	if count == festival.Rejected {
		http.Error(w, ErrFestivalRejected, http.StatusBadRequest)
		return
	}

	log.Printf("Festival added: %s on %s (%s)", req.Name, req.Date, req.Type)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "count": count})
}

// DeleteFestival removes a festival by name (edit mode only)
func DeleteFestival(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireEditMode(w) {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	FestivalMutex.Lock()
	removed := Festivals.Remove(req.Name)
	FestivalMutex.Unlock()

	if !removed {
		http.Error(w, ErrFestivalNotFound, http.StatusNotFound)
		return
	}

	log.Printf("Festival removed: %s", req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleDownload handles export downloads in ICS, CSV or JSON format
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	festivals, ok := festivalsForQuery(w, r)
	if !ok {
		return
	}

	label := "all"
	if t := r.URL.Query().Get("type"); t != "" {
		label = t
	}

	switch r.URL.Query().Get("format") {
	case "ics":
		GenerateICS(w, r, label, festivals)
	case "csv":
		GenerateCSV(w, label, festivals)
	case "json":
		GenerateJSON(w, label, festivals)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// HandleSubscribe handles calendar subscription requests
// Returns an ICS feed with festivals from the start of the previous year onwards
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	festivals, ok := festivalsForQuery(w, r)
	if !ok {
		return
	}

	from := strconv.Itoa(time.Now().Year()-1) + "-01-01"
	var recent []festival.Festival
	for _, f := range festivals {
		if f.Date >= from {
			recent = append(recent, f)
		}
	}
	festival.SortByDate(recent)

	GenerateSubscriptionICS(w, r, recent)
}

// HandleValidateVoter runs the configured validator over a voter record
func HandleValidateVoter(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var record election.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	validate := election.NewVoteValidator(VoterRules)
	writeJSON(w, http.StatusOK, validate(record))
}

// HandleCountRegions sums the votes of a region tree
func HandleCountRegions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var tree *election.RegionTree
	if err := json.NewDecoder(r.Body).Decode(&tree); err != nil {
		http.Error(w, ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"votes": election.CountVotesInRegions(tree)})
}

// festivalsForQuery returns all festivals or those matching the "type" query param
func festivalsForQuery(w http.ResponseWriter, r *http.Request) ([]festival.Festival, bool) {
	typ := festival.Type(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		http.Error(w, ErrInvalidType, http.StatusBadRequest)
		return nil, false
	}

	FestivalMutex.RLock()
	defer FestivalMutex.RUnlock()

	if typ == "" {
		return Festivals.All(), true
	}
	return Festivals.ByType(typ), true
}
