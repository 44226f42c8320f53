package app

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/civic-registry/internal/election"
	"github.com/klabast/wb-services/civic-registry/internal/festival"
)

// Seed is the startup data loaded from a YAML file
type Seed struct {
	Festivals         []festival.Festival `yaml:"festivals"`
	MovableFeastYears []int               `yaml:"movable_feast_years"`
	Elections         []ElectionSeed      `yaml:"elections"`
	Validator         *election.Rules     `yaml:"validator"`
}

// ElectionSeed describes an election to create at startup
type ElectionSeed struct {
	ID         string               `yaml:"id"`
	Candidates []election.Candidate `yaml:"candidates"`
}

// LoadSeed reads and decodes a seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("yaml unmarshal %s: %w", path, err)
	}
	return &seed, nil
}

// ApplySeed loads festivals, movable feasts, elections and validator rules into
// the global state. Rejected festivals are logged and skipped.
func ApplySeed(seed *Seed) error {
	FestivalMutex.Lock()
	for _, f := range seed.Festivals {
		if Festivals.Add(f.Name, f.Date, f.Type) == festival.Rejected {
			log.Printf("⚠️  Skipping seed festival %q (%s, %s): invalid or duplicate", f.Name, f.Date, f.Type)
		}
	}
	for _, year := range seed.MovableFeastYears {
		added := festival.AddMovableFeasts(Festivals, year)
		log.Printf("Added %d movable feasts for %d", added, year)
	}
	count := Festivals.Count()
	FestivalMutex.Unlock()

	for _, es := range seed.Elections {
		entry, err := Elections.Create(es.ID, es.Candidates)
		if err != nil {
			return fmt.Errorf("seed election: %w", err)
		}
		log.Printf("✅ Election %s seeded with %d candidates", entry.ID, len(es.Candidates))
	}

	if seed.Validator != nil {
		VoterRules = *seed.Validator
	}

	log.Printf("✅ Seed applied: %d festivals, %d elections", count, len(seed.Elections))
	return nil
}

// LoadAndApplySeed is the startup path: a missing default seed file is not an error
func LoadAndApplySeed(path string, explicit bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		log.Printf("No seed file at %s, starting empty", path)
		return nil
	}

	seed, err := LoadSeed(path)
	if err != nil {
		return err
	}
	return ApplySeed(seed)
}
