package enums

import "fmt"

// SortKey orders catalog listings.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

var validSortKeys = []SortKey{
	SortFeatured,
	SortPriceAsc,
	SortPriceDesc,
}

func (s SortKey) String() string {
	return string(s)
}

func (s SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortKey converts a query value into a SortKey. Empty input yields the
// zero value, which keeps the store order.
func ParseSortKey(value string) (SortKey, error) {
	if value == "" {
		return "", nil
	}
	for _, candidate := range validSortKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}
