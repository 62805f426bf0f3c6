package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Os-De/hs-rp.com/internal/cart"
)

const formatVersion = 1

type document struct {
	Version int      `json:"version"`
	Entries []record `json:"entries"`
}

type record struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// rawRecord uses pointers so that absent fields can be told apart from zero
// values. Price is the field name the storefront page wrote before the
// versioned layout existed.
type rawRecord struct {
	ID        *string  `json:"id"`
	Name      *string  `json:"name"`
	Amount    *string  `json:"amount"`
	UnitPrice *float64 `json:"unitPrice"`
	Price     *float64 `json:"price"`
	Quantity  *float64 `json:"quantity"`
}

type rawDocument struct {
	Version *int         `json:"version"`
	Entries *[]rawRecord `json:"entries"`
}

// Encode serialises entries in order. Equal inputs give equal bytes.
func Encode(entries []cart.Entry) ([]byte, error) {
	doc := document{Version: formatVersion, Entries: make([]record, 0, len(entries))}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, record{
			ID:        e.ID,
			Name:      e.Name,
			Amount:    e.Amount,
			UnitPrice: e.UnitPrice,
			Quantity:  e.Quantity,
		})
	}
	return json.Marshal(doc)
}

// Decode parses either the versioned document or the legacy bare array.
// Any structural problem is reported as a reason string; the caller wraps it.
func Decode(data []byte) ([]cart.Entry, string) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []cart.Entry{}, ""
	}

	var (
		records []rawRecord
		legacy  bool
	)
	switch trimmed[0] {
	case '[':
		legacy = true
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, "unparsable: " + err.Error()
		}
	case '{':
		var doc rawDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, "unparsable: " + err.Error()
		}
		if doc.Version == nil {
			return nil, "missing version"
		}
		if *doc.Version != formatVersion {
			return nil, fmt.Sprintf("unsupported version %d", *doc.Version)
		}
		if doc.Entries == nil {
			return nil, "missing entries"
		}
		records = *doc.Entries
	default:
		return nil, "unparsable: not a JSON array or object"
	}

	out := make([]cart.Entry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		e, reason := r.toEntry(legacy)
		if reason != "" {
			return nil, fmt.Sprintf("entries[%d]: %s", i, reason)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Sprintf("entries[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, ""
}

func (r rawRecord) toEntry(legacy bool) (cart.Entry, string) {
	if r.ID == nil {
		return cart.Entry{}, "missing id"
	}
	if strings.TrimSpace(*r.ID) == "" {
		return cart.Entry{}, "empty id"
	}
	if r.Name == nil {
		return cart.Entry{}, "missing name"
	}

	amount := ""
	if r.Amount != nil {
		amount = *r.Amount
	} else if !legacy {
		return cart.Entry{}, "missing amount"
	}

	price := r.UnitPrice
	if price == nil && legacy {
		price = r.Price
	}
	if price == nil {
		return cart.Entry{}, "missing unitPrice"
	}
	if math.IsNaN(*price) || math.IsInf(*price, 0) || *price < 0 {
		return cart.Entry{}, fmt.Sprintf("invalid unitPrice %v", *price)
	}

	if r.Quantity == nil {
		return cart.Entry{}, "missing quantity"
	}
	q := *r.Quantity
	if q != math.Trunc(q) {
		return cart.Entry{}, fmt.Sprintf("non-integer quantity %v", q)
	}
	if q < 1 || q > math.MaxInt32 {
		return cart.Entry{}, fmt.Sprintf("quantity %v out of range", q)
	}

	return cart.Entry{
		ID:        *r.ID,
		Name:      *r.Name,
		Amount:    amount,
		UnitPrice: *price,
		Quantity:  int(q),
	}, ""
}
