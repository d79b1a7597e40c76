package supplier

// Supplier owns the products it ships. It is informational only for
// checkout; products reference it by id.
type Supplier struct {
	ID           int64   `json:"supplierId"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contactEmail,omitempty"`
}
