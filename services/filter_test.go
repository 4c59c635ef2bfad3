package services

import (
	"testing"

	"visir-watcher/config"
	"visir-watcher/models"
)

func testCriteria() config.FilterCriteria {
	return config.FilterCriteria{
		MinPrice:    50000000,
		MaxPrice:    90000000,
		MinBedrooms: 2,
		MaxBedrooms: 4,
		ZipCodes:    "101,105",
		Excluded:    []string{"Breiðholt", "kjallari"},
	}
}

func record(price int) *models.ListingRecord {
	return &models.ListingRecord{
		Address:    "Laugavegur 1, 101 Reykjavík",
		PriceRaw:   "irrelevant",
		PriceValue: &price,
		Bedrooms:   "3 herb.",
		Link:       "https://fasteignir.visir.is/property/1",
	}
}

func TestFilterPriceBoundariesInclusive(t *testing.T) {
	f := NewFilterEngine(testCriteria(), newTestLogger())

	tests := []struct {
		price int
		want  bool
	}{
		{50000000, true},  // exactly min
		{90000000, true},  // exactly max
		{49999999, false}, // one below min
		{90000001, false}, // one above max
		{70000000, true},
	}

	for _, tt := range tests {
		if got := f.Accept(record(tt.price)); got != tt.want {
			t.Errorf("Accept(price=%d) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestFilterExcludedAddressSubstrings(t *testing.T) {
	f := NewFilterEngine(testCriteria(), newTestLogger())

	tests := []struct {
		address string
		want    bool
	}{
		{"Laugavegur 1, 101 Reykjavík", true},
		{"Arnarbakki 4, Breiðholt", false},
		{"Arnarbakki 4, BREIÐHOLT", false}, // case-insensitive
		{"Fín íbúð í KJALLARI", false},
		{"Kjallarastígur 2", false}, // plain substring, not token-aware
	}

	for _, tt := range tests {
		rec := record(70000000)
		rec.Address = tt.address
		if got := f.Accept(rec); got != tt.want {
			t.Errorf("Accept(address=%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

func TestFilterBedroomsAdvisoryByDefault(t *testing.T) {
	f := NewFilterEngine(testCriteria(), newTestLogger())

	rec := record(70000000)
	rec.Bedrooms = "7 herb."
	if !f.Accept(rec) {
		t.Error("bedroom bounds must not be enforced unless strict mode is on")
	}
}

func TestFilterBedroomsStrictMode(t *testing.T) {
	criteria := testCriteria()
	criteria.StrictBedrooms = true
	f := NewFilterEngine(criteria, newTestLogger())

	tests := []struct {
		bedrooms string
		want     bool
	}{
		{"2 herb.", true},  // exactly min
		{"4 herb.", true},  // exactly max
		{"1 herb.", false}, // below min
		{"5 herb.", false}, // above max
		{models.NotAvailable, true}, // unparsable passes
		{"stúdíó", true},
	}

	for _, tt := range tests {
		rec := record(70000000)
		rec.Bedrooms = tt.bedrooms
		if got := f.Accept(rec); got != tt.want {
			t.Errorf("Accept(bedrooms=%q) = %v, want %v", tt.bedrooms, got, tt.want)
		}
	}
}

func TestFilterNilPriceRejected(t *testing.T) {
	f := NewFilterEngine(testCriteria(), newTestLogger())
	rec := record(70000000)
	rec.PriceValue = nil
	if f.Accept(rec) {
		t.Error("record without a parsed price must be rejected")
	}
}
