package election

// DefaultMinAge is the voting age used when Rules.MinAge is not set
const DefaultMinAge = 18

// Validation reasons
const (
	ReasonInvalidVoter  = "invalid_voter"
	ReasonUnderage      = "underage"
	reasonMissingPrefix = "missing_"
)

// Record is a voter as submitted, keyed by field name
type Record map[string]any

// Rules configures a VoteValidator
type Rules struct {
	MinAge         int      `json:"min_age" yaml:"min_age"`
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`
}

// Validation is the outcome of a VoteValidator. Reason is empty when Valid.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// VoteValidator checks a single voter record
type VoteValidator func(voter Record) Validation

// NewVoteValidator builds a validator from rules. A zero MinAge means DefaultMinAge.
//
// Required fields are checked in order before the age, so the first missing
// field is reported as "missing_<field>".
func NewVoteValidator(rules Rules) VoteValidator {
	minAge := rules.MinAge
	if minAge == 0 {
		minAge = DefaultMinAge
	}
	required := append([]string(nil), rules.RequiredFields...)

	return func(voter Record) Validation {
		if voter == nil {
			return Validation{Reason: ReasonInvalidVoter}
		}

		for _, field := range required {
			if !hasField(voter, field) {
				return Validation{Reason: reasonMissingPrefix + field}
			}
		}

		age, ok := numeric(voter["age"])
		if !ok || age < float64(minAge) {
			return Validation{Reason: ReasonUnderage}
		}

		return Validation{Valid: true}
	}
}

func hasField(voter Record, field string) bool {
	value, ok := voter[field]
	if !ok || value == nil {
		return false
	}
	if s, isString := value.(string); isString && s == "" {
		return false
	}
	return true
}

// numeric accepts the number types produced by Go literals and encoding/json
func numeric(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
