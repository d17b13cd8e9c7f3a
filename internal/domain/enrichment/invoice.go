package enrichment

import "github.com/shopspring/decimal"

// InvoiceLine is one fetched invoice line.
type InvoiceLine struct {
	ID        int64
	ProductID int64
	OrderID   int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// InvoiceLineFromRecord normalizes a raw invoice line record. Product and
// order references are relation pairs; only the identifier is kept.
func InvoiceLineFromRecord(rec Record) InvoiceLine {
	return InvoiceLine{
		ID:        rec.Int("id"),
		ProductID: rec.Rel("product_id").ID,
		OrderID:   rec.Rel("move_id").ID,
		Quantity:  rec.Decimal("quantity"),
		UnitPrice: rec.Decimal("price_unit"),
	}
}

// Product is a normalized product record.
type Product struct {
	ID   int64
	Name string
	Code string
}

// ProductFromRecord normalizes a raw product record.
func ProductFromRecord(rec Record) Product {
	return Product{
		ID:   rec.Int("id"),
		Name: rec.Str("name"),
		Code: rec.Str("default_code"),
	}
}

// NoteIndex resolves the order note for an invoice line. ByOrder holds
// notes fetched per order identifier; Fallback is the single note found via
// origin-name search and applies when a line's order has no entry.
type NoteIndex struct {
	ByOrder  map[int64]string
	Fallback string
}

// Lookup returns the note for the given order, or the fallback.
func (n NoteIndex) Lookup(orderID int64) string {
	if note, ok := n.ByOrder[orderID]; ok {
		return note
	}
	return n.Fallback
}

// EnrichedLine is one output line of a pipeline run. Field names follow the
// combined record emitted to the caller.
type EnrichedLine struct {
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price_unit"`
	OrderNote   string          `json:"sale_order_note"`
}

// Result is the terminal output of one pipeline run. It echoes select
// inbound fields next to the normalized customer and the ordered enriched
// lines, and lives only for the duration of the response.
type Result struct {
	Origin       string         `json:"invoice_origin,omitempty"`
	PartnerID    int64          `json:"partner_id"`
	PaymentState string         `json:"payment_state,omitempty"`
	CurrencyID   int64          `json:"currency_id,omitempty"`
	Customer     Customer       `json:"customer"`
	Lines        []EnrichedLine `json:"products"`
}
