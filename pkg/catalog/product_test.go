package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductJSONPriceIsNumber(t *testing.T) {
	p := Product{ID: "p1", Name: "Limonene", Price: decimal.RequireFromString("9.99")}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"p1","name":"Limonene","price":9.99}`
	if string(raw) != want {
		t.Errorf("Marshal = %s, want %s", raw, want)
	}

	var back Product
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Price.Equal(p.Price) || back.ID != "p1" {
		t.Errorf("Unmarshal = %+v", back)
	}

	// Quoted prices are accepted too
	if err := json.Unmarshal([]byte(`{"id":"p2","price":"4.50"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Price.String() != "4.5" {
		t.Errorf("quoted price = %s", back.Price)
	}
}

func TestCatalog(t *testing.T) {
	c := Demo()

	p, ok := c.Lookup("limonene-10ml")
	if !ok || p.Price.String() != "9.99" {
		t.Fatalf("Lookup = %+v, %v", p, ok)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}

	products := c.Products()
	if len(products) != 6 || products[0].ID != "limonene-10ml" {
		t.Errorf("Products() order = %v", products)
	}

	cats := c.Categories()
	if len(cats) != 2 || cats[0] != "blend" || cats[1] != "single" {
		t.Errorf("Categories() = %v", cats)
	}
}

func TestCatalogDuplicates(t *testing.T) {
	c := New(
		Product{ID: "a", Price: decimal.NewFromInt(1)},
		Product{ID: "b", Price: decimal.NewFromInt(2)},
		Product{ID: "a", Price: decimal.NewFromInt(3)},
	)
	if len(c.Products()) != 2 {
		t.Fatalf("Products() = %v", c.Products())
	}
	if p, _ := c.Lookup("a"); !p.Price.Equal(decimal.NewFromInt(3)) {
		t.Errorf("later duplicate should win, got %s", p.Price)
	}
}
