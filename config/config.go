package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// FilterCriteria is the resolved search profile for one run. It is loaded
// once and never mutated afterwards.
type FilterCriteria struct {
	MinPrice    int      `json:"MIN_PRICE"`
	MaxPrice    int      `json:"MAX_PRICE"`
	MinBedrooms int      `json:"MIN_BEDROOMS"`
	MaxBedrooms int      `json:"MAX_BEDROOMS"`
	ZipCodes    string   `json:"ZIP_CODES"`
	Excluded    []string `json:"ignored_strings"`

	// StrictBedrooms makes FilterEngine enforce the bedroom bounds locally.
	// By default the upstream query URL already constrains bedrooms and the
	// card text is too free-form to parse reliably.
	StrictBedrooms bool `json:"strict_bedrooms"`
}

// Validate rejects a profile missing the bounds the engine cannot run
// without. A run never starts on an invalid profile.
func (fc *FilterCriteria) Validate() error {
	if fc.MinPrice <= 0 || fc.MaxPrice <= 0 {
		return errors.New("criteria: MIN_PRICE and MAX_PRICE are required")
	}
	if fc.MinPrice > fc.MaxPrice {
		return fmt.Errorf("criteria: MIN_PRICE %d exceeds MAX_PRICE %d", fc.MinPrice, fc.MaxPrice)
	}
	if fc.MinBedrooms < 0 || fc.MaxBedrooms < fc.MinBedrooms {
		return fmt.Errorf("criteria: invalid bedroom range %d–%d", fc.MinBedrooms, fc.MaxBedrooms)
	}
	if fc.ZipCodes == "" {
		return errors.New("criteria: ZIP_CODES is required")
	}
	return nil
}

// userProfile is one entry of the multi-tenant profiles file.
type userProfile struct {
	FilterCriteria
	CatalogPath string `json:"catalog_path"`

	SendGridAPIKey string `json:"SENDGRID_API_KEY"`
	FromEmail      string `json:"FROM_EMAIL"`
	ToEmail        string `json:"TO_EMAIL"`
}

// Config holds everything one run needs: the resolved criteria, storage and
// notification settings, and the scraper tunables from the environment.
type Config struct {
	User     string
	Criteria FilterCriteria

	CatalogPath string
	PostgresDSN string

	SendGridAPIKey string
	FromEmail      string
	ToEmail        string

	ChromeBin       string
	MaxPages        int
	MaxRetries      int
	RateLimitMs     int
	RenderTimeoutMs int
	SettleMs        int
}

// Load reads the .env file, then resolves the named user's profile from the
// JSON profiles file. Environment variables override profile values for the
// notification credentials so keys can stay out of the profiles file.
func Load(profilesPath, user string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	data, err := os.ReadFile(profilesPath)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", profilesPath, err)
	}

	profiles := make(map[string]userProfile)
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", profilesPath, err)
	}

	profile, ok := profiles[user]
	if !ok {
		return nil, fmt.Errorf("config: user %q not found in %q", user, profilesPath)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		User:     user,
		Criteria: profile.FilterCriteria,

		CatalogPath: profile.CatalogPath,
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", profile.SendGridAPIKey),
		FromEmail:      getEnv("FROM_EMAIL", profile.FromEmail),
		ToEmail:        getEnv("TO_EMAIL", profile.ToEmail),

		ChromeBin:       getEnv("CHROME_BIN", ""),
		MaxPages:        getEnvInt("MAX_PAGES", 50),
		MaxRetries:      getEnvInt("MAX_RETRIES", 5),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 2000),
		RenderTimeoutMs: getEnvInt("RENDER_TIMEOUT_MS", 15000),
		SettleMs:        getEnvInt("SETTLE_MS", 2000),
	}

	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "catalogs/" + user + ".json"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
