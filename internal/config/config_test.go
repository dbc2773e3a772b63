package config

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/noot-app/mealplan-scaler/internal/scaling"
	"github.com/stretchr/testify/assert"
)

// MockFileReader implements FileReader for testing
type MockFileReader struct {
	files map[string]string // filename -> content
}

func (m MockFileReader) Open(filename string) (io.ReadCloser, error) {
	if content, exists := m.files[filename]; exists {
		return io.NopCloser(strings.NewReader(content)), nil
	}
	return nil, os.ErrNotExist
}

func (m MockFileReader) Stat(filename string) (os.FileInfo, error) {
	if _, exists := m.files[filename]; exists {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

var configEnvVars = []string{
	"AUTH_TOKEN", "PORT", "ENV", "DATA_DIR", "PLANS_PATH", "PLANS_URL", "METADATA_PATH",
	"LOCK_FILE", "DISABLE_REMOTE_CHECK", "IGNORE_LOCK", "UNITS_FILE", "REFERENCE_WEIGHT_KG",
	"MIN_SCALE_FACTOR", "MAX_SCALE_FACTOR", "TOLERANCE_KCAL", "MAX_CORRECTION_PASSES",
	"TABLE_CONCURRENCY",
}

// clearConfigEnv unsets every config variable for the duration of the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		original, existed := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if existed {
				os.Setenv(key, original)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			expected: &Config{
				AuthToken:           "super-secret-token",
				Port:                "8080",
				Environment:         "production",
				DataDir:             "./data",
				PlansPath:           "data/plans.json", // filepath.Join result
				MetadataPath:        "data/metadata.json",
				LockFile:            "data/refresh.lock",
				ReferenceWeightKg:   100,
				MinScaleFactor:      0.5,
				MaxScaleFactor:      1.5,
				ToleranceKcal:       5,
				MaxCorrectionPasses: 1,
				TableConcurrency:    8,
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"AUTH_TOKEN":            "custom-token",
				"DATA_DIR":              "/custom/data",
				"PORT":                  "3000",
				"ENV":                   "development",
				"PLANS_URL":             "https://example.com/plans.json",
				"DISABLE_REMOTE_CHECK":  "true",
				"IGNORE_LOCK":           "1",
				"UNITS_FILE":            "/etc/units.yaml",
				"REFERENCE_WEIGHT_KG":   "80",
				"MIN_SCALE_FACTOR":      "0.6",
				"MAX_SCALE_FACTOR":      "1.4",
				"TOLERANCE_KCAL":        "10",
				"MAX_CORRECTION_PASSES": "3",
				"TABLE_CONCURRENCY":     "2",
			},
			expected: &Config{
				AuthToken:           "custom-token",
				Port:                "3000",
				Environment:         "development",
				DataDir:             "/custom/data",
				PlansPath:           "/custom/data/plans.json",
				PlansURL:            "https://example.com/plans.json",
				MetadataPath:        "/custom/data/metadata.json",
				LockFile:            "/custom/data/refresh.lock",
				DisableRemoteCheck:  true,
				IgnoreLock:          true,
				UnitsFile:           "/etc/units.yaml",
				ReferenceWeightKg:   80,
				MinScaleFactor:      0.6,
				MaxScaleFactor:      1.4,
				ToleranceKcal:       10,
				MaxCorrectionPasses: 3,
				TableConcurrency:    2,
			},
		},
		{
			name: "invalid numbers fall back to defaults",
			envVars: map[string]string{
				"REFERENCE_WEIGHT_KG":   "heavy",
				"MAX_CORRECTION_PASSES": "many",
				"IGNORE_LOCK":           "maybe",
			},
			expected: &Config{
				AuthToken:           "super-secret-token",
				Port:                "8080",
				Environment:         "production",
				DataDir:             "./data",
				PlansPath:           "data/plans.json",
				MetadataPath:        "data/metadata.json",
				LockFile:            "data/refresh.lock",
				ReferenceWeightKg:   100,
				MinScaleFactor:      0.5,
				MaxScaleFactor:      1.5,
				ToleranceKcal:       5,
				MaxCorrectionPasses: 1,
				TableConcurrency:    8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			// no .env file so the result only depends on the environment
			mockReader := MockFileReader{files: map[string]string{}}
			config := LoadWithFileReader(mockReader)
			assert.Equal(t, tt.expected, config)
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		expected    bool
	}{
		{
			name:        "production mode",
			environment: "production",
			expected:    false,
		},
		{
			name:        "development mode",
			environment: "development",
			expected:    true,
		},
		{
			name:        "empty environment",
			environment: "",
			expected:    false,
		},
		{
			name:        "other environment",
			environment: "staging",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.expected, cfg.IsDevelopment())
		})
	}
}

func TestScalingOptions(t *testing.T) {
	cfg := &Config{
		ReferenceWeightKg:   90,
		MinScaleFactor:      0.6,
		MaxScaleFactor:      1.4,
		ToleranceKcal:       8,
		MaxCorrectionPasses: 2,
		TableConcurrency:    4,
	}

	opts := cfg.ScalingOptions()
	assert.Equal(t, scaling.Options{
		ReferenceWeightKg: 90,
		MinFactor:         0.6,
		MaxFactor:         1.4,
		ToleranceKcal:     8,
		MaxPasses:         2,
		TableConcurrency:  4,
	}, opts)
	assert.InDelta(t, 1.0, opts.ScaleFactor(90), 1e-12)
	assert.InDelta(t, 1.4, opts.ScaleFactor(180), 1e-12)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("with .env file", func(t *testing.T) {
		clearConfigEnv(t)
		envContent := `# Test .env file
AUTH_TOKEN=test-token-from-env
PORT=9999
# Comment line
MAX_CORRECTION_PASSES=4

PLANS_URL="https://example.com/catalog.json"
`
		mockReader := MockFileReader{
			files: map[string]string{
				".env": envContent,
			},
		}

		loadEnvFileWithReader(mockReader)

		assert.Equal(t, "test-token-from-env", os.Getenv("AUTH_TOKEN"))
		assert.Equal(t, "9999", os.Getenv("PORT"))
		assert.Equal(t, "https://example.com/catalog.json", os.Getenv("PLANS_URL"))

		// values already in the environment take precedence
		os.Setenv("AUTH_TOKEN", "cli-override-token")
		loadEnvFileWithReader(mockReader)

		assert.Equal(t, "cli-override-token", os.Getenv("AUTH_TOKEN"))
		assert.Equal(t, "9999", os.Getenv("PORT"))

		cfg := LoadWithFileReader(mockReader)
		assert.Equal(t, 4, cfg.MaxCorrectionPasses)
	})

	t.Run("without .env file", func(t *testing.T) {
		clearConfigEnv(t)
		mockReader := MockFileReader{files: map[string]string{}}

		os.Setenv("AUTH_TOKEN", "cli-token")

		loadEnvFileWithReader(mockReader)

		assert.Equal(t, "cli-token", os.Getenv("AUTH_TOKEN"))
		assert.Equal(t, "", os.Getenv("PORT"))
	})
}
