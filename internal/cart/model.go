package cart

// Entry is one line of the cart, keyed by product ID. Name, Amount and
// UnitPrice are captured when the product is first added.
type Entry struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is UnitPrice * Quantity, unrounded.
func (e Entry) LineTotal() float64 {
	return e.UnitPrice * float64(e.Quantity)
}

// Item is an add-to-cart request. A zero Quantity means one unit; callers
// that must tell an explicit zero apart check it with ValidateQuantity first.
type Item struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity,omitempty"`
}
