package app

import (
	"sync"

	"github.com/klabast/wb-services/civic-registry/internal/election"
	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

// Constants
const (
	DefaultSeedFile = "seed.yaml"
	SeedFileEnv     = "SEED_FILE"

	// Error messages
	ErrEditModeDisabled     = "Edit mode disabled"
	ErrInvalidDateFormat    = "Invalid date format"
	ErrInvalidLimit         = "Invalid limit"
	ErrInvalidType          = "Invalid festival type"
	ErrInvalidFormat        = "Invalid format"
	ErrInvalidPayload       = "Invalid payload"
	ErrInternalServer       = "Internal server error"
	ErrFestivalRejected     = "Festival rejected (invalid or duplicate)"
	ErrFestivalNotFound     = "Festival not found"
	ErrElectionNotFound     = "Election not found"
	ErrElectionExists       = "Election already exists"
	ErrUnknownAction        = "Unknown election action"
	ErrFailedToGenerateJSON = "Failed to generate JSON"

	// Mode strings
	ModeServe = "serve"
	ModeEdit  = "edit"

	// ICS constants
	ICSProductID = "-//Winterberg//Civic Registry//EN"
	ICSTimezone  = "Europe/Berlin"
	ICSUIDDomain = "civic-registry.winterberg.de"
)

// Global variables
var (
	Festivals     = festival.NewManager()
	FestivalMutex sync.RWMutex
	Elections     = NewRegistry()
	EditMode      bool

	// VoterRules configures the /api/voters/validate endpoint
	VoterRules = election.Rules{MinAge: election.DefaultMinAge}
)
