package services

import (
	"regexp"
	"strconv"
	"strings"

	"visir-watcher/config"
	"visir-watcher/models"
	"visir-watcher/utils"
)

// firstIntRegexp pulls the leading integer out of free-form room text like
// "3 herb.".
var firstIntRegexp = regexp.MustCompile(`\d+`)

// FilterEngine decides whether a normalized record matches the run's
// criteria. It never mutates the record.
type FilterEngine struct {
	criteria config.FilterCriteria
	logger   *utils.Logger
}

// NewFilterEngine creates a FilterEngine over immutable criteria.
func NewFilterEngine(criteria config.FilterCriteria, logger *utils.Logger) *FilterEngine {
	return &FilterEngine{criteria: criteria, logger: logger}
}

// Accept applies the inclusion rules: price inside [MinPrice, MaxPrice],
// address free of excluded substrings, and — only in strict mode — bedroom
// count inside [MinBedrooms, MaxBedrooms]. Bounds are inclusive on both
// ends.
func (f *FilterEngine) Accept(rec *models.ListingRecord) bool {
	if rec.PriceValue == nil {
		return false
	}
	price := *rec.PriceValue
	if price < f.criteria.MinPrice || price > f.criteria.MaxPrice {
		f.logger.Debug("[filter] Price %d outside range: %s", price, rec.Address)
		return false
	}

	address := strings.ToLower(rec.Address)
	for _, substr := range f.criteria.Excluded {
		if substr != "" && strings.Contains(address, strings.ToLower(substr)) {
			f.logger.Debug("[filter] Address excluded by %q: %s", substr, rec.Address)
			return false
		}
	}

	if f.criteria.StrictBedrooms {
		if bedrooms, ok := parseBedrooms(rec.Bedrooms); ok {
			if bedrooms < f.criteria.MinBedrooms || bedrooms > f.criteria.MaxBedrooms {
				f.logger.Debug("[filter] Bedrooms %d outside range: %s", bedrooms, rec.Address)
				return false
			}
		}
		// Unparsable bedroom text passes; the upstream query URL already
		// constrains bedrooms, so local enforcement is best-effort.
	}

	return true
}

// parseBedrooms extracts the first integer from room display text.
func parseBedrooms(raw string) (int, bool) {
	if raw == models.NotAvailable {
		return 0, false
	}
	match := firstIntRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
