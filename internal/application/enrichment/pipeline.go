package enrichment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/webhook-bridge/internal/domain/enrichment"
	"github.com/erp/webhook-bridge/internal/infrastructure/telemetry"
)

// NoteStrategy selects how the order note is looked up.
type NoteStrategy string

const (
	// NoteStrategyAuto searches by origin name when the event carries one,
	// otherwise batch-reads the orders referenced by the invoice lines.
	NoteStrategyAuto NoteStrategy = "auto"
	// NoteStrategyOrigin always searches the order collection by the event's
	// origin reference.
	NoteStrategyOrigin NoteStrategy = "origin"
	// NoteStrategyOrderRef always batch-reads the distinct orders referenced
	// by the fetched invoice lines.
	NoteStrategyOrderRef NoteStrategy = "order_ref"
)

// IsValid returns true if the strategy is one of the supported values.
func (s NoteStrategy) IsValid() bool {
	switch s {
	case NoteStrategyAuto, NoteStrategyOrigin, NoteStrategyOrderRef:
		return true
	default:
		return false
	}
}

// Pipeline orchestrates the ordered sequence of dependent remote reads that
// turns an inbound invoice event into an enriched combined record. One
// independent run per event; the only shared state is the reader and the
// logger, both safe for concurrent use.
type Pipeline struct {
	reader   enrichment.RecordReader
	strategy NoteStrategy
	logger   *zap.Logger
}

// NewPipeline creates a new Pipeline. An empty strategy defaults to auto.
func NewPipeline(reader enrichment.RecordReader, strategy NoteStrategy, logger *zap.Logger) *Pipeline {
	if strategy == "" {
		strategy = NoteStrategyAuto
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		reader:   reader,
		strategy: strategy,
		logger:   logger,
	}
}

// Enrich runs the full stage chain for one event:
// authenticate, fetch customer, fetch invoice lines, fetch order notes,
// fetch products, join. Stages are strictly sequential; each remote read is
// attempted once and any failure aborts the run with the failing stage
// attached. Missing optional leaf data (product, note, address fields) is
// defaulted, never an error.
//
// The order-reference note lookup needs the fetched lines' order ids, so
// lines are read before notes; with the origin strategy the search only
// needs the event itself. Either way the run issues at most five remote
// calls regardless of line count.
func (p *Pipeline) Enrich(ctx context.Context, event enrichment.InboundEvent) (*enrichment.Result, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "enrich.pipeline",
		telemetry.WithAttribute("partner_id", event.PartnerID),
		telemetry.WithAttribute("line_count", len(event.LineIDs)),
	)
	defer span.End()

	uid, err := p.authenticate(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	customer, err := p.fetchCustomer(ctx, event.PartnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines, err := p.fetchInvoiceLines(ctx, event.LineIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	notes, err := p.fetchOrderNotes(ctx, event, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	products, err := p.fetchProducts(ctx, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &enrichment.Result{
		Origin:       event.Origin,
		PartnerID:    event.PartnerID,
		PaymentState: event.PaymentState,
		CurrencyID:   event.CurrencyID,
		Customer:     customer,
		Lines:        enrichment.Join(lines, products, notes),
	}

	p.logger.Info("invoice event enriched",
		zap.Int64("uid", uid),
		zap.Int64("partner_id", event.PartnerID),
		zap.String("customer", customer.Name),
		zap.Int("lines", len(result.Lines)),
	)

	return result, nil
}

// authenticate obtains the remote session. Failure here is terminal for the
// whole request.
func (p *Pipeline) authenticate(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "enrich.authenticate")
	defer span.End()

	uid, err := p.reader.Authenticate(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("%w: %v", enrichment.ErrAuthFailed, err)
	}
	telemetry.SetAttribute(span, "uid", uid)
	return uid, nil
}

// fetchCustomer reads the partner record. Zero records is a caller error
// surfaced as ErrCustomerNotFound, not defaulted.
func (p *Pipeline) fetchCustomer(ctx context.Context, partnerID int64) (enrichment.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "enrich.fetch_customer",
		telemetry.WithAttribute("partner_id", partnerID),
	)
	defer span.End()

	records, err := p.reader.Read(ctx, enrichment.CollectionPartners, []int64{partnerID}, enrichment.PartnerFields)
	if err != nil {
		telemetry.RecordError(span, err)
		return enrichment.Customer{}, enrichment.NewUpstreamError(enrichment.StageCustomer, err)
	}
	if len(records) == 0 {
		return enrichment.Customer{}, fmt.Errorf("%w: partner %d", enrichment.ErrCustomerNotFound, partnerID)
	}
	return enrichment.CustomerFromRecord(records[0]), nil
}

// fetchInvoiceLines batch-reads the event's invoice lines. An empty id list
// yields an empty result without a remote call.
func (p *Pipeline) fetchInvoiceLines(ctx context.Context, lineIDs []int64) ([]enrichment.InvoiceLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "enrich.fetch_invoice_lines",
		telemetry.WithAttribute("line_count", len(lineIDs)),
	)
	defer span.End()

	records, err := p.reader.Read(ctx, enrichment.CollectionInvoiceLines, lineIDs, enrichment.InvoiceLineFields)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, enrichment.NewUpstreamError(enrichment.StageInvoiceLines, err)
	}

	lines := make([]enrichment.InvoiceLine, 0, len(records))
	for _, rec := range records {
		lines = append(lines, enrichment.InvoiceLineFromRecord(rec))
	}
	return lines, nil
}

// fetchOrderNotes resolves the note index using the configured strategy.
// No match and no note both default to the empty string.
func (p *Pipeline) fetchOrderNotes(ctx context.Context, event enrichment.InboundEvent, lines []enrichment.InvoiceLine) (enrichment.NoteIndex, error) {
	strategy := p.strategy
	if strategy == NoteStrategyAuto {
		if event.Origin != "" {
			strategy = NoteStrategyOrigin
		} else {
			strategy = NoteStrategyOrderRef
		}
	}

	switch strategy {
	case NoteStrategyOrigin:
		return p.fetchNoteByOrigin(ctx, event.Origin)
	default:
		return p.fetchNotesByOrderRefs(ctx, lines)
	}
}

// fetchNoteByOrigin searches the order collection by name equality and takes
// the first match's note.
func (p *Pipeline) fetchNoteByOrigin(ctx context.Context, origin string) (enrichment.NoteIndex, error) {
	if origin == "" {
		return enrichment.NoteIndex{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "enrich.fetch_order_notes",
		telemetry.WithAttribute("strategy", string(NoteStrategyOrigin)),
		telemetry.WithAttribute("origin", origin),
	)
	defer span.End()

	records, err := p.reader.SearchRead(ctx, enrichment.CollectionOrders,
		[]enrichment.Condition{enrichment.Eq("name", origin)}, enrichment.OrderNoteFields)
	if err != nil {
		telemetry.RecordError(span, err)
		return enrichment.NoteIndex{}, enrichment.NewUpstreamError(enrichment.StageOrderNotes, err)
	}
	if len(records) == 0 {
		return enrichment.NoteIndex{}, nil
	}
	return enrichment.NoteIndex{Fallback: enrichment.StripMarkup(records[0].Str("note"))}, nil
}

// fetchNotesByOrderRefs batch-reads the distinct orders referenced by the
// fetched invoice lines and builds the id-to-note mapping.
func (p *Pipeline) fetchNotesByOrderRefs(ctx context.Context, lines []enrichment.InvoiceLine) (enrichment.NoteIndex, error) {
	orderIDs := distinctOrderIDs(lines)
	if len(orderIDs) == 0 {
		return enrichment.NoteIndex{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "enrich.fetch_order_notes",
		telemetry.WithAttribute("strategy", string(NoteStrategyOrderRef)),
		telemetry.WithAttribute("order_count", len(orderIDs)),
	)
	defer span.End()

	records, err := p.reader.Read(ctx, enrichment.CollectionOrders, orderIDs, enrichment.OrderNoteFields)
	if err != nil {
		telemetry.RecordError(span, err)
		return enrichment.NoteIndex{}, enrichment.NewUpstreamError(enrichment.StageOrderNotes, err)
	}

	byOrder := make(map[int64]string, len(records))
	for _, rec := range records {
		byOrder[rec.Int("id")] = enrichment.StripMarkup(rec.Str("note"))
	}
	return enrichment.NoteIndex{ByOrder: byOrder}, nil
}

// fetchProducts batch-reads the distinct products referenced by the fetched
// invoice lines. No referenced products means no remote call.
func (p *Pipeline) fetchProducts(ctx context.Context, lines []enrichment.InvoiceLine) (map[int64]enrichment.Product, error) {
	productIDs := distinctProductIDs(lines)
	if len(productIDs) == 0 {
		return map[int64]enrichment.Product{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "enrich.fetch_products",
		telemetry.WithAttribute("product_count", len(productIDs)),
	)
	defer span.End()

	records, err := p.reader.Read(ctx, enrichment.CollectionProducts, productIDs, enrichment.ProductFields)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, enrichment.NewUpstreamError(enrichment.StageProducts, err)
	}

	products := make(map[int64]enrichment.Product, len(records))
	for _, rec := range records {
		product := enrichment.ProductFromRecord(rec)
		products[product.ID] = product
	}
	return products, nil
}

// distinctOrderIDs returns the set of non-zero order references, first-seen
// order preserved.
func distinctOrderIDs(lines []enrichment.InvoiceLine) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.OrderID == 0 || seen[line.OrderID] {
			continue
		}
		seen[line.OrderID] = true
		ids = append(ids, line.OrderID)
	}
	return ids
}

// distinctProductIDs returns the set of non-zero product references,
// first-seen order preserved.
func distinctProductIDs(lines []enrichment.InvoiceLine) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 || seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}
	return ids
}
