package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Load() Tests ====================

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.True(t, s.ProbabilityAnalysis)
	assert.False(t, s.ImportanceAnalysis)
	assert.False(t, s.UncertaintyAnalysis)
	assert.False(t, s.SILAnalysis)

	assert.Equal(t, 8760.0, s.MissionTime)
	assert.Equal(t, 1000, s.NumTrials)
	assert.Equal(t, 50, s.SILPoints)
	assert.Equal(t, int64(1), s.Seed)

	assert.Equal(t, ApproxExact, s.Approximation)
	assert.Equal(t, SILModeLowDemand, s.SILMode)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("SCRAM_PROBABILITY_ANALYSIS", "false")
	t.Setenv("SCRAM_IMPORTANCE_ANALYSIS", "true")
	t.Setenv("SCRAM_UNCERTAINTY_ANALYSIS", "true")
	t.Setenv("SCRAM_SIL_ANALYSIS", "true")
	t.Setenv("SCRAM_MISSION_TIME", "720")
	t.Setenv("SCRAM_NUM_TRIALS", "5000")
	t.Setenv("SCRAM_SIL_POINTS", "100")
	t.Setenv("SCRAM_SEED", "42")
	t.Setenv("SCRAM_APPROXIMATION", "rare-event")
	t.Setenv("SCRAM_SIL_MODE", "high-demand")

	s, err := Load()
	require.NoError(t, err)

	assert.False(t, s.ProbabilityAnalysis)
	assert.True(t, s.ImportanceAnalysis)
	assert.True(t, s.UncertaintyAnalysis)
	assert.True(t, s.SILAnalysis)
	assert.Equal(t, 720.0, s.MissionTime)
	assert.Equal(t, 5000, s.NumTrials)
	assert.Equal(t, 100, s.SILPoints)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, ApproxRareEvent, s.Approximation)
	assert.Equal(t, SILModeHighDemand, s.SILMode)
}

func TestLoad_InvalidValuesUseDefaults(t *testing.T) {
	t.Setenv("SCRAM_MISSION_TIME", "not_a_number")
	t.Setenv("SCRAM_NUM_TRIALS", "invalid")
	t.Setenv("SCRAM_SEED", "invalid")
	t.Setenv("SCRAM_PROBABILITY_ANALYSIS", "not_a_bool")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8760.0, s.MissionTime)
	assert.Equal(t, 1000, s.NumTrials)
	assert.Equal(t, int64(1), s.Seed)
	assert.True(t, s.ProbabilityAnalysis)
}

func TestLoad_InvalidApproximationFailsValidation(t *testing.T) {
	t.Setenv("SCRAM_APPROXIMATION", "monte-carlo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidSILModeFailsValidation(t *testing.T) {
	t.Setenv("SCRAM_SIL_MODE", "medium-demand")

	_, err := Load()
	assert.Error(t, err)
}

// ==================== Settings.Validate() Tests ====================

func validSettings() *Settings {
	return &Settings{
		MissionTime:   8760,
		NumTrials:     1000,
		SILPoints:     50,
		Seed:          1,
		Approximation: ApproxExact,
		SILMode:       SILModeLowDemand,
	}
}

func TestSettings_Validate_Success(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestSettings_Validate_NonPositiveMissionTime(t *testing.T) {
	tests := []float64{0, -1}
	for _, mt := range tests {
		s := validSettings()
		s.MissionTime = mt
		assert.Error(t, s.Validate())
	}
}

func TestSettings_Validate_NonPositiveNumTrials(t *testing.T) {
	tests := []int{0, -1}
	for _, n := range tests {
		s := validSettings()
		s.NumTrials = n
		assert.Error(t, s.Validate())
	}
}

func TestSettings_Validate_SILPointsTooSmall(t *testing.T) {
	tests := []int{0, 1}
	for _, n := range tests {
		s := validSettings()
		s.SILPoints = n
		assert.Error(t, s.Validate())
	}
}

func TestSettings_Validate_InvalidApproximation(t *testing.T) {
	s := validSettings()
	s.Approximation = "monte-carlo"
	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestSettings_Validate_ValidApproximations(t *testing.T) {
	for _, a := range []Approximation{ApproxExact, ApproxRareEvent, ApproxMCUB} {
		s := validSettings()
		s.Approximation = a
		assert.NoError(t, s.Validate())
	}
}

func TestSettings_Validate_InvalidSILMode(t *testing.T) {
	s := validSettings()
	s.SILMode = "medium-demand"
	assert.Error(t, s.Validate())
}

func TestSettings_Validate_ValidSILModes(t *testing.T) {
	for _, m := range []SILMode{SILModeLowDemand, SILModeHighDemand} {
		s := validSettings()
		s.SILMode = m
		assert.NoError(t, s.Validate())
	}
}

// ==================== Helper Functions Tests ====================

func TestGetEnv_WithValue(t *testing.T) {
	t.Setenv("TEST_KEY", "test_value")
	assert.Equal(t, "test_value", getEnv("TEST_KEY", "default"))
}

func TestGetEnv_WithoutValue(t *testing.T) {
	assert.Equal(t, "default", getEnv("TEST_KEY_UNSET", "default"))
}

func TestGetEnvAsBool_True(t *testing.T) {
	for _, v := range []string{"true", "True", "TRUE", "1", "t", "T"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_BOOL", v)
			assert.True(t, getEnvAsBool("TEST_BOOL", false))
		})
	}
}

func TestGetEnvAsBool_False(t *testing.T) {
	for _, v := range []string{"false", "False", "FALSE", "0", "f", "F"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_BOOL", v)
			assert.False(t, getEnvAsBool("TEST_BOOL", true))
		})
	}
}

func TestGetEnvAsBool_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_BOOL", "invalid")
	assert.True(t, getEnvAsBool("TEST_BOOL", true))
}

func TestGetEnvAsBool_EmptyUsesDefault(t *testing.T) {
	assert.True(t, getEnvAsBool("TEST_BOOL_UNSET", true))
}

func TestGetEnvAsInt_Valid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("TEST_INT", 10))
}

func TestGetEnvAsInt_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_INT", "not_a_number")
	assert.Equal(t, 10, getEnvAsInt("TEST_INT", 10))
}

func TestGetEnvAsInt_EmptyUsesDefault(t *testing.T) {
	assert.Equal(t, 10, getEnvAsInt("TEST_INT_UNSET", 10))
}

func TestGetEnvAsInt64_Valid(t *testing.T) {
	t.Setenv("TEST_INT64", "9999999999")
	assert.Equal(t, int64(9999999999), getEnvAsInt64("TEST_INT64", 1))
}

func TestGetEnvAsInt64_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_INT64", "nope")
	assert.Equal(t, int64(1), getEnvAsInt64("TEST_INT64", 1))
}

func TestGetEnvAsFloat_Valid(t *testing.T) {
	t.Setenv("TEST_FLOAT", "3.5")
	assert.Equal(t, 3.5, getEnvAsFloat("TEST_FLOAT", 1.0))
}

func TestGetEnvAsFloat_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT", "nope")
	assert.Equal(t, 1.0, getEnvAsFloat("TEST_FLOAT", 1.0))
}
