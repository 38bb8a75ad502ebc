package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/terpenos/storefront/pkg/catalog"
)

// ErrInvalidCart is returned when a stored cart is not a JSON object with
// an array-valued "items" field.
var ErrInvalidCart = errors.New("cart: stored value is not a cart")

// Item is one product together with the quantity selected.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is the set of line items with derived total price and item count.
//
// Total is the sum of price*quantity over Items rounded half-up to cents,
// and ItemCount is the sum of quantities. No two items share a product ID.
type Cart struct {
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Empty returns the empty cart.
func Empty() Cart {
	return Cart{Items: []Item{}, Total: decimal.Zero}
}

// Find returns the item for productID.
func (c Cart) Find(productID string) (Item, bool) {
	for _, it := range c.Items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return Item{}, false
}

// Clone returns a copy of c that shares no item storage with it.
func (c Cart) Clone() Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, Total: c.Total, ItemCount: c.ItemCount}
}

// Equal reports whether a and b hold the same items, quantities and totals.
func (c Cart) Equal(o Cart) bool {
	if len(c.Items) != len(o.Items) || c.ItemCount != o.ItemCount || !c.Total.Equal(o.Total) {
		return false
	}
	for i := range c.Items {
		a, b := c.Items[i], o.Items[i]
		if a.Quantity != b.Quantity || a.Product.ID != b.Product.ID || !a.Product.Price.Equal(b.Product.Price) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the cart with total as a JSON number and items as an
// array, never null.
func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(struct {
		Items     []Item      `json:"items"`
		Total     json.Number `json:"total"`
		ItemCount int         `json:"itemCount"`
	}{
		Items:     items,
		Total:     json.Number(c.Total.String()),
		ItemCount: c.ItemCount,
	})
}

// Compute builds a cart from items, deriving Total and ItemCount.
// The total is rounded once, after summing, so per-item rounding errors
// never compound.
func Compute(items []Item) Cart {
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	if items == nil {
		items = []Item{}
	}
	return Cart{Items: items, Total: RoundCents(total), ItemCount: count}
}

var half = decimal.New(5, -1)

// RoundCents rounds d to two decimal places, halves going up:
// floor(d*100 + 0.5) / 100.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// SkippedItem is a stored item Decode left out of the cart.
type SkippedItem struct {
	Index int
	Err   error
}

// Decode parses a stored cart.
//
// The value must be a JSON object whose "items" field is an array; other
// fields may be missing or extra. Anything else is ErrInvalidCart.
// Elements of items are read one by one: an element without a string
// product id, a price or an integer quantity is skipped, and display
// fields of the wrong type are ignored. Totals are recomputed from the
// items, items without a positive quantity are dropped and repeated
// product IDs are merged, so a decoded cart always satisfies the Cart
// invariants.
func Decode(raw string) (Cart, error) {
	c, _, err := DecodeItems(raw)
	return c, err
}

// DecodeItems is Decode that also reports the skipped elements.
func DecodeItems(raw string) (Cart, []SkippedItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Cart{}, nil, errors.Join(ErrInvalidCart, err)
	}
	if fields == nil {
		return Cart{}, nil, ErrInvalidCart
	}
	items, ok := fields["items"]
	if !ok {
		return Cart{}, nil, ErrInvalidCart
	}
	if trimmed := bytes.TrimSpace(items); len(trimmed) == 0 || trimmed[0] != '[' {
		return Cart{}, nil, ErrInvalidCart
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(items, &elems); err != nil {
		return Cart{}, nil, errors.Join(ErrInvalidCart, err)
	}

	var skipped []SkippedItem
	normalized := make([]Item, 0, len(elems))
	index := make(map[string]int, len(elems))
	for i, elem := range elems {
		it, err := decodeItem(elem)
		if err != nil {
			skipped = append(skipped, SkippedItem{Index: i, Err: err})
			continue
		}
		if j, ok := index[it.Product.ID]; ok {
			normalized[j].Quantity += it.Quantity
			continue
		}
		index[it.Product.ID] = len(normalized)
		normalized = append(normalized, it)
	}
	kept := normalized[:0]
	for _, it := range normalized {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	return Compute(kept), skipped, nil
}

func decodeItem(raw json.RawMessage) (Item, error) {
	var stored struct {
		Product  map[string]json.RawMessage `json:"product"`
		Quantity json.RawMessage            `json:"quantity"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Item{}, fmt.Errorf("item: %w", err)
	}
	if stored.Product == nil {
		return Item{}, errors.New("item: no product")
	}

	var it Item
	if err := json.Unmarshal(stored.Product["id"], &it.Product.ID); err != nil || it.Product.ID == "" {
		return Item{}, errors.New("item: product id is not a string")
	}
	price := bytes.TrimSpace(stored.Product["price"])
	if len(price) == 0 || string(price) == "null" {
		return Item{}, fmt.Errorf("item %s: no price", it.Product.ID)
	}
	if err := json.Unmarshal(price, &it.Product.Price); err != nil {
		return Item{}, fmt.Errorf("item %s: price: %w", it.Product.ID, err)
	}
	if err := json.Unmarshal(stored.Quantity, &it.Quantity); err != nil {
		return Item{}, fmt.Errorf("item %s: quantity is not an integer", it.Product.ID)
	}

	// Display only.
	optionalString(stored.Product["name"], &it.Product.Name)
	optionalString(stored.Product["category"], &it.Product.Category)
	optionalString(stored.Product["image"], &it.Product.Image)
	return it, nil
}

func optionalString(raw json.RawMessage, dst *string) {
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, dst)
	}
}

// Encode serializes c in its storage format.
func Encode(c Cart) (string, error) {
	raw, err := json.Marshal(c)
	return string(raw), err
}
