package entity

// Product is one catalog item. Its Id equals the item's position in the
// catalog file and its row in both vector indexes, so index hits map back to
// products by position. The catalog is loaded once at startup and read-only
// for the process lifetime.
type Product struct {
	Id          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}
