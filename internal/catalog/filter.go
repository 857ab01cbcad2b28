package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
)

// AllCategories is the category sentinel that disables category filtering.
const AllCategories = "all"

// Filter narrows and orders a catalog listing.
type Filter struct {
	Search   string
	Category string
	Sort     enums.SortKey
}

// Apply returns the items that match f in the requested order. The input
// slice is never modified, and applying the same filter twice yields the same
// result as applying it once.
func Apply(items []models.CatalogItem, f Filter) []models.CatalogItem {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		if !anyCategory && item.Category != category {
			continue
		}
		out = append(out, item)
	}

	switch f.Sort {
	case enums.SortFeatured:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].IsFeatured && !out[j].IsFeatured
		})
	case enums.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case enums.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

// Categories returns the distinct categories of items in first-seen order.
func Categories(items []models.CatalogItem) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, item := range items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	return out
}

// Featured returns at most limit featured items, keeping store order.
func Featured(items []models.CatalogItem, limit int) []models.CatalogItem {
	out := []models.CatalogItem{}
	for _, item := range items {
		if !item.IsFeatured {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, item)
	}
	return out
}
