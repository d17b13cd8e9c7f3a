package enrichment

import "context"

// Remote collections read by the pipeline.
const (
	CollectionPartners     = "res.partner"
	CollectionInvoiceLines = "account.move.line"
	CollectionOrders       = "sale.order"
	CollectionProducts     = "product.product"
)

// Fixed field sets requested per collection.
var (
	PartnerFields     = []string{"name", "email", "phone", "street", "street2", "city", "state_id", "zip", "country_id"}
	InvoiceLineFields = []string{"product_id", "quantity", "price_unit", "move_id"}
	OrderNoteFields   = []string{"note"}
	ProductFields     = []string{"name", "default_code"}
)

// Condition is a single search criterion understood by the remote
// search_read operation.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: "=", Value: value}
}

// RecordReader is the port to the platform's generic object-relational API.
// It follows the Ports & Adapters pattern: the interface lives in the domain
// layer and the XML-RPC adapter in the infrastructure layer implements it.
// The pipeline depends only on these three operations, never on transport
// framing.
type RecordReader interface {
	// Authenticate establishes a session with the configured credentials and
	// returns its user identifier.
	Authenticate(ctx context.Context) (int64, error)

	// Read fetches the given fields of the identified records in a single
	// request.
	Read(ctx context.Context, collection string, ids []int64, fields []string) ([]Record, error)

	// SearchRead fetches the given fields of every record matching the
	// criteria in a single request.
	SearchRead(ctx context.Context, collection string, criteria []Condition, fields []string) ([]Record, error)
}
