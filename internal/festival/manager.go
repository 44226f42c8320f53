// Package festival manages an ordered list of named calendar entries.
//
// Dates are fixed-width ISO strings (YYYY-MM-DD), so lexical comparison
// matches calendar ordering. A Manager is not safe for concurrent use.
package festival

import (
	"regexp"
	"slices"
	"strings"
)

// Type classifies a festival
type Type string

const (
	TypeReligious Type = "religious"
	TypeNational  Type = "national"
	TypeCultural  Type = "cultural"
)

// Types lists all valid festival types
var Types = []Type{TypeReligious, TypeNational, TypeCultural}

// DefaultUpcomingLimit is the number of entries Upcoming callers usually ask for
const DefaultUpcomingLimit = 3

// Rejected is returned by Add when a festival is not accepted
const Rejected = -1

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Festival is a single named calendar entry
type Festival struct {
	Name string `json:"name" yaml:"name"`
	Date string `json:"date" yaml:"date"`
	Type Type   `json:"type" yaml:"type"`
}

// Manager holds festivals in insertion order, unique by name
type Manager struct {
	festivals []Festival
}

// NewManager returns an empty, independent manager
func NewManager() *Manager {
	return &Manager{}
}

// Valid reports whether t is a known festival type
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// IsDate reports whether s matches the YYYY-MM-DD pattern
func IsDate(s string) bool {
	return datePattern.MatchString(s)
}

// Add appends a festival and returns the new count. It returns Rejected for a
// blank name, a malformed date, an unknown type or a duplicate name.
func (m *Manager) Add(name, date string, typ Type) int {
	if strings.TrimSpace(name) == "" || !IsDate(date) || !typ.Valid() {
		return Rejected
	}
	if m.indexOf(name) >= 0 {
		return Rejected
	}

	m.festivals = append(m.festivals, Festival{Name: name, Date: date, Type: typ})
	return len(m.festivals)
}

// Remove deletes the festival with the given name
func (m *Manager) Remove(name string) bool {
	i := m.indexOf(name)
	if i < 0 {
		return false
	}
	m.festivals = slices.Delete(m.festivals, i, i+1)
	return true
}

// All returns a copy of every festival in insertion order
func (m *Manager) All() []Festival {
	return append([]Festival{}, m.festivals...)
}

// ByType returns a copy of the festivals of the given type in insertion order
func (m *Manager) ByType(typ Type) []Festival {
	out := []Festival{}
	for _, f := range m.festivals {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

// Upcoming returns up to n festivals dated on or after currentDate, earliest
// first. An invalid currentDate or a non-positive n yields an empty list.
func (m *Manager) Upcoming(currentDate string, n int) []Festival {
	if !IsDate(currentDate) || n <= 0 {
		return []Festival{}
	}

	upcoming := []Festival{}
	for _, f := range m.festivals {
		if f.Date >= currentDate {
			upcoming = append(upcoming, f)
		}
	}
	SortByDate(upcoming)

	if len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return upcoming
}

// Count returns the number of festivals
func (m *Manager) Count() int {
	return len(m.festivals)
}

func (m *Manager) indexOf(name string) int {
	return slices.IndexFunc(m.festivals, func(f Festival) bool {
		return f.Name == name
	})
}

// SortByDate sorts festivals by date in ascending order, keeping the
// relative order of festivals on the same day
func SortByDate(festivals []Festival) {
	slices.SortStableFunc(festivals, func(a, b Festival) int {
		return strings.Compare(a.Date, b.Date)
	})
}
