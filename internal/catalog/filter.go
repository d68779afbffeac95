package catalog

import "strings"

// Filter applies the category and free-text filters to products.
//
// An empty category matches every category. The term is trimmed and
// matched case-insensitively as a substring of name, brand or description.
// Source order is preserved. With neither filter set no products are shown.
func Filter(products []Product, category, term string) Result {
	if len(products) == 0 {
		return Result{Products: []Product{}, Placeholder: PlaceholderInitial}
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if category == "" && term == "" {
		return Result{Products: []Product{}, Placeholder: PlaceholderNoFilter}
	}

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		matched = append(matched, p)
	}

	if len(matched) == 0 {
		return Result{Products: matched, Placeholder: PlaceholderNoMatches}
	}
	return Result{Products: matched}
}

func matchesTerm(p Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
