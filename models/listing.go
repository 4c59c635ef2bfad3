package models

// NotAvailable marks a card field that could not be extracted or parsed.
// It is stored verbatim so catalog files stay readable by humans.
const NotAvailable = "N/A"

// ListingRecord is one discovered property listing. Link is the identity
// key: no two records in a catalog share one. Pointer fields are absent
// until the stage that produces them has run (PricePerM2 at normalization,
// the feature flags after detail enrichment).
type ListingRecord struct {
	Address    string  `json:"address"`
	PriceRaw   string  `json:"price"`
	SizeM2     string  `json:"size_m2"`
	PricePerM2 *int    `json:"price_per_m2"`
	TotalRooms string  `json:"total_rooms"`
	Bedrooms   string  `json:"bedrooms"`
	Link       string  `json:"link"`
	ImageURL   *string `json:"image_url"`
	HasBalcony *bool   `json:"has_balcony,omitempty"`
	HasTerrace *bool   `json:"has_terrace,omitempty"`

	// PriceValue is the parsed numeric amount behind PriceRaw. It is not
	// persisted; catalog entries are only ever consulted for membership.
	PriceValue *int `json:"-"`
}

// RawCard holds the unparsed text of one listing card as extracted from the
// rendered results page, before any normalization.
type RawCard struct {
	Link       string
	Address    string
	Price      string
	Size       string
	TotalRooms string
	Bedrooms   string
	ImageURL   string
}

// RunSummary counts what happened during one reconciler run.
type RunSummary struct {
	PagesWalked int
	CardsSeen   int
	Accepted    int
	Duplicates  int
	Rejected    int
}
