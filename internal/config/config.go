// Package config loads and validates the <scram> settings block: which
// analyses to run, the mission time and trial count, and the probability
// approximation mode.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Approximation selects how the top-event probability is combined from its
// minimal cut sets when an exact solver isn't wired.
type Approximation string

const (
	ApproxExact     Approximation = "exact"
	ApproxRareEvent Approximation = "rare-event"
	ApproxMCUB      Approximation = "mcub"
)

// SILMode selects which IEC 61508 metric governs SIL classification.
type SILMode string

const (
	SILModeLowDemand  SILMode = "low-demand"
	SILModeHighDemand SILMode = "high-demand"
)

// Settings mirrors the MEF's <scram> root element (spec §6): which
// analyses run, the mission time and sampling budget, and the SIL
// evaluation mode.
type Settings struct {
	ProbabilityAnalysis bool `validate:"-"`
	ImportanceAnalysis  bool `validate:"-"`
	UncertaintyAnalysis bool `validate:"-"`
	SILAnalysis         bool `validate:"-"`

	MissionTime float64 `validate:"gt=0"`
	NumTrials   int     `validate:"gt=0"`
	SILPoints   int     `validate:"gt=1"`
	Seed        int64   `validate:"-"`

	Approximation Approximation `validate:"oneof=exact rare-event mcub"`
	SILMode       SILMode       `validate:"oneof=low-demand high-demand"`
}

var validate = validator.New()

// Load reads .env (if present) then the SCRAM_* environment variables into
// a Settings value and validates it.
func Load() (*Settings, error) {
	godotenv.Load()

	s := &Settings{
		ProbabilityAnalysis: getEnvAsBool("SCRAM_PROBABILITY_ANALYSIS", true),
		ImportanceAnalysis:  getEnvAsBool("SCRAM_IMPORTANCE_ANALYSIS", false),
		UncertaintyAnalysis: getEnvAsBool("SCRAM_UNCERTAINTY_ANALYSIS", false),
		SILAnalysis:         getEnvAsBool("SCRAM_SIL_ANALYSIS", false),
		MissionTime:         getEnvAsFloat("SCRAM_MISSION_TIME", 8760),
		NumTrials:           getEnvAsInt("SCRAM_NUM_TRIALS", 1000),
		SILPoints:           getEnvAsInt("SCRAM_SIL_POINTS", 50),
		Seed:                getEnvAsInt64("SCRAM_SEED", 1),
		Approximation:       Approximation(getEnv("SCRAM_APPROXIMATION", string(ApproxExact))),
		SILMode:             SILMode(getEnv("SCRAM_SIL_MODE", string(SILModeLowDemand))),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every struct tag; there are no cross-field rules.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvAsInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
