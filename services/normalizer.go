package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"visir-watcher/models"
	"visir-watcher/utils"
)

// offerSentinel is what the site shows instead of a price when a property
// is sold by offer/auction. Such listings cannot be price-filtered, so the
// whole record is rejected.
const offerSentinel = "Tilboð"

var (
	// ErrNoPrice means the card's price was absent, the offer sentinel, or
	// unparsable. Price is the one field a record cannot live without.
	ErrNoPrice = errors.New("listing has no usable price")

	// ErrIncompleteCard means the card lacks a link or an address.
	ErrIncompleteCard = errors.New("listing card missing link or address")
)

// Normalizer turns raw card text into a canonical ListingRecord. Pure: no
// I/O, no shared state beyond the logger.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize parses one raw card. Any field that fails to parse becomes the
// "N/A" sentinel rather than failing the record, except price: a record
// without a parsed price is rejected outright.
func (n *Normalizer) Normalize(card models.RawCard) (*models.ListingRecord, error) {
	link := strings.TrimSpace(card.Link)
	address := normalizeText(card.Address)
	if link == "" || link == models.NotAvailable ||
		address == "" || address == models.NotAvailable {
		n.logger.Debug("[normalize] Card missing link or address: %q / %q", card.Link, card.Address)
		return nil, ErrIncompleteCard
	}

	priceRaw := strings.TrimSpace(card.Price)
	if priceRaw == "" {
		priceRaw = models.NotAvailable
	}
	if priceRaw == offerSentinel {
		n.logger.Debug("[normalize] Offer-priced listing skipped: %s", address)
		return nil, fmt.Errorf("%w: %s", ErrNoPrice, offerSentinel)
	}
	price, err := parsePrice(priceRaw)
	if err != nil {
		n.logger.Debug("[normalize] Unparsable price %q: %s", card.Price, address)
		return nil, fmt.Errorf("%w: %q", ErrNoPrice, card.Price)
	}

	rec := &models.ListingRecord{
		Address:    address,
		PriceRaw:   priceRaw,
		PriceValue: &price,
		SizeM2:     textOrNA(card.Size),
		TotalRooms: textOrNA(card.TotalRooms),
		Bedrooms:   textOrNA(card.Bedrooms),
		Link:       link,
	}

	if img := strings.TrimSpace(card.ImageURL); img != "" {
		rec.ImageURL = &img
	}

	if size, ok := parseSize(rec.SizeM2); ok && size > 0 {
		perM2 := int(float64(price) / size)
		rec.PricePerM2 = &perM2
	}

	return rec, nil
}

// parsePrice parses a localized price like "75.000.000 kr": dots are
// thousands separators, " kr" is the currency suffix.
func parsePrice(raw string) (int, error) {
	s := strings.ReplaceAll(raw, ".", "")
	s = strings.TrimSuffix(s, " kr")
	s = strings.TrimSpace(s)
	return strconv.Atoi(s)
}

// parseSize parses a size like "120,5 m²" into square meters. The site uses
// a decimal comma.
func parseSize(raw string) (float64, bool) {
	if raw == models.NotAvailable {
		return 0, false
	}
	s := strings.ReplaceAll(raw, "m²", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// normalizeText collapses internal whitespace and trims the ends.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textOrNA(s string) string {
	if t := normalizeText(s); t != "" {
		return t
	}
	return models.NotAvailable
}
