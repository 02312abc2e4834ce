package sanitizer

// Quantity bounds for inventory items.
const (
	MinQuantity = 0

	MaxQuantity = 100000
)
