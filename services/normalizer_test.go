package services

import (
	"errors"
	"testing"

	"visir-watcher/models"
	"visir-watcher/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func baseCard() models.RawCard {
	return models.RawCard{
		Link:       "https://fasteignir.visir.is/property/12345",
		Address:    "Laugavegur 1, 101 Reykjavík",
		Price:      "75.000.000 kr",
		Size:       "120 m²",
		TotalRooms: "4 herb.",
		Bedrooms:   "3 herb.",
	}
}

func TestNormalizePriceParsing(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		price   string
		want    int
		wantErr error
	}{
		{"75.000.000 kr", 75000000, nil},
		{"1.500.000 kr", 1500000, nil},
		{"Tilboð", 0, ErrNoPrice},
		{"N/A", 0, ErrNoPrice},
		{"", 0, ErrNoPrice},
		{"not a price", 0, ErrNoPrice},
	}

	for _, tt := range tests {
		card := baseCard()
		card.Price = tt.price
		rec, err := n.Normalize(card)

		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize(price=%q): err = %v, want %v", tt.price, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(price=%q): unexpected error %v", tt.price, err)
			continue
		}
		if rec.PriceValue == nil || *rec.PriceValue != tt.want {
			t.Errorf("Normalize(price=%q): PriceValue = %v, want %d", tt.price, rec.PriceValue, tt.want)
		}
	}
}

func TestNormalizePricePerM2(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		size string
		want *int
	}{
		{"120 m²", intPtr(625000)},
		{"120,5 m²", intPtr(622406)},
		{"0 m²", nil},
		{"N/A", nil},
		{"", nil},
		{"huge", nil},
	}

	for _, tt := range tests {
		card := baseCard()
		card.Size = tt.size
		rec, err := n.Normalize(card)
		if err != nil {
			t.Fatalf("Normalize(size=%q): unexpected error %v", tt.size, err)
		}

		switch {
		case tt.want == nil && rec.PricePerM2 != nil:
			t.Errorf("Normalize(size=%q): PricePerM2 = %d, want absent", tt.size, *rec.PricePerM2)
		case tt.want != nil && rec.PricePerM2 == nil:
			t.Errorf("Normalize(size=%q): PricePerM2 absent, want %d", tt.size, *tt.want)
		case tt.want != nil && *rec.PricePerM2 != *tt.want:
			t.Errorf("Normalize(size=%q): PricePerM2 = %d, want %d", tt.size, *rec.PricePerM2, *tt.want)
		}
	}
}

func TestNormalizeRejectsIncompleteCards(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	noLink := baseCard()
	noLink.Link = ""
	noAddress := baseCard()
	noAddress.Address = ""
	naAddress := baseCard()
	naAddress.Address = models.NotAvailable

	for _, card := range []models.RawCard{noLink, noAddress, naAddress} {
		if _, err := n.Normalize(card); !errors.Is(err, ErrIncompleteCard) {
			t.Errorf("Normalize(%+v): err = %v, want ErrIncompleteCard", card, err)
		}
	}
}

func TestNormalizeMissingFieldsBecomeSentinel(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	card := baseCard()
	card.Size = ""
	card.TotalRooms = ""
	card.Bedrooms = ""

	rec, err := n.Normalize(card)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SizeM2 != models.NotAvailable {
		t.Errorf("SizeM2 = %q, want %q", rec.SizeM2, models.NotAvailable)
	}
	if rec.TotalRooms != models.NotAvailable {
		t.Errorf("TotalRooms = %q, want %q", rec.TotalRooms, models.NotAvailable)
	}
	if rec.Bedrooms != models.NotAvailable {
		t.Errorf("Bedrooms = %q, want %q", rec.Bedrooms, models.NotAvailable)
	}
	if rec.PricePerM2 != nil {
		t.Errorf("PricePerM2 should be absent when size is missing")
	}
}

func TestNormalizeCollapsesAddressWhitespace(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	card := baseCard()
	card.Address = "  Laugavegur 1,\n  101   Reykjavík "
	rec, err := n.Normalize(card)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Address != "Laugavegur 1, 101 Reykjavík" {
		t.Errorf("Address = %q", rec.Address)
	}
}

func intPtr(n int) *int { return &n }
