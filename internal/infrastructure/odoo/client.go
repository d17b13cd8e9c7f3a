package odoo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"

	"github.com/erp/webhook-bridge/internal/domain/enrichment"
)

// Errors returned by the client
var (
	// ErrAuthRejected indicates the platform rejected the configured
	// credentials (authenticate returned false).
	ErrAuthRejected = errors.New("odoo: credentials rejected")
	// ErrInvalidResponse indicates a response with an unexpected shape.
	ErrInvalidResponse = errors.New("odoo: unexpected response shape")
)

// Client implements enrichment.RecordReader over Odoo's external XML-RPC
// API: authenticate on /xmlrpc/2/common, execute_kw read/search_read on
// /xmlrpc/2/object. The authenticated uid is cached with a TTL and
// invalidated on read failure, with a single re-authentication retry.
// Safe for concurrent use; the uid cache is the only mutable state.
type Client struct {
	config *Config
	common *xmlrpc.Client
	object *xmlrpc.Client
	logger *zap.Logger

	mu         sync.Mutex
	uid        int64
	uidExpires time.Time
}

// NewClient creates a new Client for the configured Odoo instance.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	common, err := xmlrpc.NewClient(config.CommonURL(), transport)
	if err != nil {
		return nil, fmt.Errorf("odoo: failed to create common client: %w", err)
	}
	object, err := xmlrpc.NewClient(config.ObjectURL(), transport)
	if err != nil {
		return nil, fmt.Errorf("odoo: failed to create object client: %w", err)
	}

	return &Client{
		config: config,
		common: common,
		object: object,
		logger: logger,
	}, nil
}

// Authenticate establishes a session and returns its user identifier.
// With a positive session TTL a fresh uid is served from cache.
func (c *Client) Authenticate(ctx context.Context) (int64, error) {
	if c.config.SessionTTLSeconds > 0 {
		c.mu.Lock()
		if c.uid != 0 && time.Now().Before(c.uidExpires) {
			uid := c.uid
			c.mu.Unlock()
			return uid, nil
		}
		c.mu.Unlock()
	}
	return c.authenticate(ctx)
}

// Read fetches the given fields of the identified records in one request.
// An empty id list yields an empty result without a remote call.
func (c *Client) Read(ctx context.Context, collection string, ids []int64, fields []string) ([]enrichment.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return c.executeRead(ctx, collection, "read", []any{ids}, map[string]any{"fields": fields})
}

// SearchRead fetches the given fields of every record matching the criteria
// in one request.
func (c *Client) SearchRead(ctx context.Context, collection string, criteria []enrichment.Condition, fields []string) ([]enrichment.Record, error) {
	domain := make([]any, 0, len(criteria))
	for _, cond := range criteria {
		domain = append(domain, []any{cond.Field, cond.Op, cond.Value})
	}
	return c.executeRead(ctx, collection, "search_read", []any{domain}, map[string]any{"fields": fields})
}

// authenticate performs the remote authentication call and refreshes the
// cached uid.
func (c *Client) authenticate(ctx context.Context) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var reply any
	args := []any{c.config.Database, c.config.Username, c.config.Password, map[string]any{}}
	if err := call(ctx, c.common, "authenticate", args, &reply); err != nil {
		return 0, fmt.Errorf("odoo: authenticate: %w", err)
	}

	// Odoo answers false, not a fault, for bad credentials.
	uid, ok := asInt64(reply)
	if !ok || uid <= 0 {
		return 0, ErrAuthRejected
	}

	c.mu.Lock()
	c.uid = uid
	if ttl := c.config.SessionTTLSeconds; ttl > 0 {
		c.uidExpires = time.Now().Add(time.Duration(ttl) * time.Second)
	} else {
		c.uidExpires = time.Time{}
	}
	c.mu.Unlock()

	c.logger.Debug("odoo session established", zap.Int64("uid", uid))
	return uid, nil
}

// session returns a usable uid and whether it was served from cache.
func (c *Client) session(ctx context.Context) (int64, bool, error) {
	c.mu.Lock()
	if c.uid != 0 && (c.uidExpires.IsZero() || time.Now().Before(c.uidExpires)) {
		uid := c.uid
		c.mu.Unlock()
		return uid, true, nil
	}
	c.mu.Unlock()

	uid, err := c.authenticate(ctx)
	return uid, false, err
}

// invalidateSession drops the cached uid.
func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.uid = 0
	c.uidExpires = time.Time{}
	c.mu.Unlock()
}

// executeRead issues one execute_kw call. When the call fails under a
// cached session the session is invalidated and the call retried once after
// re-authenticating; a session obtained for this very call is never retried.
func (c *Client) executeRead(ctx context.Context, collection, operation string, posArgs []any, options map[string]any) ([]enrichment.Record, error) {
	uid, cached, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	records, err := c.executeKw(ctx, uid, collection, operation, posArgs, options)
	if err != nil && cached {
		c.invalidateSession()
		uid, _, authErr := c.session(ctx)
		if authErr != nil {
			return nil, err
		}
		c.logger.Warn("odoo read failed under cached session, retrying once after re-authentication",
			zap.String("collection", collection),
			zap.String("operation", operation),
			zap.Error(err),
		)
		records, err = c.executeKw(ctx, uid, collection, operation, posArgs, options)
	}
	return records, err
}

// executeKw performs a single execute_kw RPC against the object endpoint.
func (c *Client) executeKw(ctx context.Context, uid int64, collection, operation string, posArgs []any, options map[string]any) ([]enrichment.Record, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	args := []any{c.config.Database, uid, c.config.Password, collection, operation, posArgs, options}
	var reply any
	if err := call(ctx, c.object, "execute_kw", args, &reply); err != nil {
		return nil, fmt.Errorf("odoo: %s %s: %w", operation, collection, err)
	}
	return decodeRecords(reply)
}

// withTimeout bounds one remote call.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(c.config.TimeoutSeconds)*time.Second)
}

// call runs one RPC and honors context cancellation. The underlying
// transport keeps its own connection timeouts, so an abandoned call cannot
// hold a connection indefinitely.
func call(ctx context.Context, client *xmlrpc.Client, method string, args []any, reply any) error {
	done := make(chan error, 1)
	go func() {
		done <- client.Call(method, args, reply)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// decodeRecords converts the generic XML-RPC decode output into records.
func decodeRecords(v any) ([]enrichment.Record, error) {
	if v == nil {
		return nil, nil
	}
	rows, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidResponse, v)
	}
	records := make([]enrichment.Record, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: row is %T", ErrInvalidResponse, row)
		}
		records = append(records, enrichment.Record(fields))
	}
	return records, nil
}

// asInt64 coerces the numeric types the XML-RPC decoder may produce for the
// authenticate reply.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// Ensure Client implements the RecordReader port
var _ enrichment.RecordReader = (*Client)(nil)
