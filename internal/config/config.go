package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/noot-app/mealplan-scaler/internal/scaling"
)

// DefaultAuthToken is used when AUTH_TOKEN is not set
const DefaultAuthToken = "super-secret-token"

// Config holds all configuration for the scaler service
type Config struct {
	// Auth
	AuthToken string

	// Server
	Port        string
	Environment string

	// Plan catalog
	DataDir            string
	PlansPath          string
	PlansURL           string
	MetadataPath       string
	LockFile           string
	DisableRemoteCheck bool
	IgnoreLock         bool

	// Units
	UnitsFile string

	// Scaling
	ReferenceWeightKg   float64
	MinScaleFactor      float64
	MaxScaleFactor      float64
	ToleranceKcal       float64
	MaxCorrectionPasses int
	TableConcurrency    int
}

// FileReader abstracts file access so tests can supply a fake .env file
type FileReader interface {
	Open(filename string) (io.ReadCloser, error)
	Stat(filename string) (os.FileInfo, error)
}

// OSFileReader reads from the local filesystem
type OSFileReader struct{}

func (OSFileReader) Open(filename string) (io.ReadCloser, error) {
	return os.Open(filename)
}

func (OSFileReader) Stat(filename string) (os.FileInfo, error) {
	return os.Stat(filename)
}

// Load reads configuration from environment variables, after applying a .env file if present
func Load() *Config {
	return LoadWithFileReader(OSFileReader{})
}

// LoadWithFileReader is Load with an injectable file reader for the .env file
func LoadWithFileReader(reader FileReader) *Config {
	loadEnvFileWithReader(reader)

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		AuthToken:           getEnv("AUTH_TOKEN", DefaultAuthToken),
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENV", "production"),
		DataDir:             dataDir,
		PlansPath:           getEnv("PLANS_PATH", filepath.Join(dataDir, "plans.json")),
		PlansURL:            getEnv("PLANS_URL", ""),
		MetadataPath:        getEnv("METADATA_PATH", filepath.Join(dataDir, "metadata.json")),
		LockFile:            getEnv("LOCK_FILE", filepath.Join(dataDir, "refresh.lock")),
		DisableRemoteCheck:  getEnvBool("DISABLE_REMOTE_CHECK", false),
		IgnoreLock:          getEnvBool("IGNORE_LOCK", false),
		UnitsFile:           getEnv("UNITS_FILE", ""),
		ReferenceWeightKg:   getEnvFloat("REFERENCE_WEIGHT_KG", scaling.DefaultReferenceWeightKg),
		MinScaleFactor:      getEnvFloat("MIN_SCALE_FACTOR", scaling.DefaultMinFactor),
		MaxScaleFactor:      getEnvFloat("MAX_SCALE_FACTOR", scaling.DefaultMaxFactor),
		ToleranceKcal:       getEnvFloat("TOLERANCE_KCAL", scaling.DefaultToleranceKcal),
		MaxCorrectionPasses: getEnvInt("MAX_CORRECTION_PASSES", scaling.DefaultMaxPasses),
		TableConcurrency:    getEnvInt("TABLE_CONCURRENCY", scaling.DefaultTableConcurrency),
	}
}

// IsDevelopment reports whether ENV is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ScalingOptions returns the engine options described by the config
func (c *Config) ScalingOptions() scaling.Options {
	return scaling.Options{
		ReferenceWeightKg: c.ReferenceWeightKg,
		MinFactor:         c.MinScaleFactor,
		MaxFactor:         c.MaxScaleFactor,
		ToleranceKcal:     c.ToleranceKcal,
		MaxPasses:         c.MaxCorrectionPasses,
		TableConcurrency:  c.TableConcurrency,
	}
}

// loadEnvFileWithReader applies .env values for keys not already set in the environment.
// A missing or unparsable file is ignored.
func loadEnvFileWithReader(reader FileReader) {
	if _, err := reader.Stat(".env"); err != nil {
		return
	}

	f, err := reader.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
