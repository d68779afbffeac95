package catalog

// Product is one purchasable item from the static products document.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// document is the on-disk / over-the-wire shape of the catalog.
type document struct {
	Products []Product `json:"products"`
}

// Placeholder messages shown in place of the product grid.
const (
	PlaceholderInitial   = "Select a category or use the search box to view products."
	PlaceholderNoFilter  = "Choose a category or search to explore products."
	PlaceholderNoMatches = "No products matched your filters yet."
	PlaceholderLoadError = "Unable to load products right now. Please try again later."
)

// Result is the outcome of applying the category and search filters.
// Placeholder is non-empty whenever Products is empty.
type Result struct {
	Products    []Product `json:"products"`
	Placeholder string    `json:"placeholder,omitempty"`
}
