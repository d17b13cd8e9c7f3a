package enrichment

// Join produces one enriched line per fetched invoice line, preserving the
// input order and leaving the inputs untouched. A product identifier with no
// matching record and an order with no note both contribute empty strings;
// the join itself never fails. This is the pipeline's partial-failure
// tolerance at the leaf level (the customer fetch stays strict).
func Join(lines []InvoiceLine, productsByID map[int64]Product, notes NoteIndex) []EnrichedLine {
	enriched := make([]EnrichedLine, 0, len(lines))
	for _, line := range lines {
		product := productsByID[line.ProductID]
		enriched = append(enriched, EnrichedLine{
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			OrderNote:   notes.Lookup(line.OrderID),
		})
	}
	return enriched
}
