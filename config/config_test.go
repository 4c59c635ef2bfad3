package config

import (
	"os"
	"path/filepath"
	"testing"
)

const profilesJSON = `{
  "magni": {
    "MIN_PRICE": 50000000,
    "MAX_PRICE": 90000000,
    "MIN_BEDROOMS": 2,
    "MAX_BEDROOMS": 4,
    "ZIP_CODES": "101,105,107",
    "ignored_strings": ["Breiðholt"],
    "catalog_path": "catalogs/magni.json"
  },
  "incomplete": {
    "MIN_PRICE": 50000000,
    "ZIP_CODES": "101"
  }
}`

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(profilesJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesProfile(t *testing.T) {
	cfg, err := Load(writeProfiles(t), "magni")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Criteria.MinPrice != 50000000 || cfg.Criteria.MaxPrice != 90000000 {
		t.Errorf("price bounds = %d–%d", cfg.Criteria.MinPrice, cfg.Criteria.MaxPrice)
	}
	if cfg.Criteria.ZipCodes != "101,105,107" {
		t.Errorf("zip codes = %q", cfg.Criteria.ZipCodes)
	}
	if len(cfg.Criteria.Excluded) != 1 || cfg.Criteria.Excluded[0] != "Breiðholt" {
		t.Errorf("excluded = %v", cfg.Criteria.Excluded)
	}
	if cfg.CatalogPath != "catalogs/magni.json" {
		t.Errorf("catalog path = %q", cfg.CatalogPath)
	}
	if cfg.MaxPages <= 0 || cfg.MaxRetries <= 0 {
		t.Errorf("safety bounds missing: pages=%d retries=%d", cfg.MaxPages, cfg.MaxRetries)
	}
}

func TestLoadUnknownUser(t *testing.T) {
	if _, err := Load(writeProfiles(t), "nobody"); err == nil {
		t.Error("unknown user must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), "magni"); err == nil {
		t.Error("missing profiles file must fail")
	}
}

func TestLoadIncompleteCriteriaIsFatal(t *testing.T) {
	if _, err := Load(writeProfiles(t), "incomplete"); err == nil {
		t.Error("profile without required bounds must fail validation")
	}
}

func TestLoadDefaultCatalogPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	blob := `{"solo": {"MIN_PRICE": 1, "MAX_PRICE": 2, "MAX_BEDROOMS": 1, "ZIP_CODES": "101"}}`
	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, "solo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogPath != "catalogs/solo.json" {
		t.Errorf("default catalog path = %q", cfg.CatalogPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		wantErr  bool
	}{
		{"valid", FilterCriteria{MinPrice: 1, MaxPrice: 2, MaxBedrooms: 1, ZipCodes: "101"}, false},
		{"missing prices", FilterCriteria{ZipCodes: "101"}, true},
		{"inverted prices", FilterCriteria{MinPrice: 5, MaxPrice: 1, ZipCodes: "101"}, true},
		{"inverted bedrooms", FilterCriteria{MinPrice: 1, MaxPrice: 2, MinBedrooms: 3, MaxBedrooms: 1, ZipCodes: "101"}, true},
		{"missing zips", FilterCriteria{MinPrice: 1, MaxPrice: 2}, true},
	}

	for _, tt := range tests {
		err := tt.criteria.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
