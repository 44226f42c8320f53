package festival

import (
	"time"
)

// MovableFeasts returns the Easter-dependent Christian feasts of the given
// year as religious festivals, ordered by date
func MovableFeasts(year int) []Festival {
	easter := calculateEaster(year)

	offsets := []struct {
		name string
		days int
	}{
		{"Good Friday", -2},
		{"Easter Sunday", 0},
		{"Easter Monday", 1},
		{"Ascension Day", 39},
		{"Pentecost", 49},
		{"Whit Monday", 50},
		{"Corpus Christi", 60},
	}

	feasts := make([]Festival, 0, len(offsets))
	for _, o := range offsets {
		feasts = append(feasts, Festival{
			Name: o.name,
			Date: formatDate(easter.AddDate(0, 0, o.days)),
			Type: TypeReligious,
		})
	}
	return feasts
}

// AddMovableFeasts adds the feasts of year to m, skipping names already present.
// It returns how many were added.
func AddMovableFeasts(m *Manager, year int) int {
	added := 0
	for _, f := range MovableFeasts(year) {
		if m.Add(f.Name, f.Date, f.Type) != Rejected {
			added++
		}
	}
	return added
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	// Noon keeps the date stable when formatting
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
