// Package graphcommons is a client for the Graph Commons graph API. It maps
// graph payloads into lightweight records and builds the signal batches the
// service uses for every mutation.
package graphcommons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emergent-company/graphcommons-go/internal/metrics"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://graphcommons.com/api/v1"

// Options configure a Client. Only APIKey is required.
type Options struct {
	APIKey     string
	BaseURL    string
	Transport  Transport
	Logger     *slog.Logger
	MaxRetries int           // retries for GET requests that fail in transport
	Backoff    time.Duration // first retry delay, doubled on each attempt
	Timeout    time.Duration // used only when Transport is nil
}

// Client wraps the API with typed operations.
type Client struct {
	apiKey     string
	baseURL    string
	transport  Transport
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a Client from opts.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		transport:  opts.Transport,
		logger:     opts.Logger,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(opts.Timeout)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoff <= 0 {
		c.backoff = 500 * time.Millisecond
	}
	return c, nil
}

// BuildURL joins the base URL, endpoint and id, skipping empty parts.
func (c *Client) BuildURL(endpoint, id string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.baseURL, endpoint, id} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// do sends one request and maps listed error statuses to APIError.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) (*Response, error) {
	done := metrics.TimeRequest(strings.ToLower(method))
	resp, err := c.transport.Send(ctx, &Request{
		Method: method,
		URL:    rawURL,
		Body:   body,
		Header: http.Header{
			"Authentication": {c.apiKey},
			"Content-Type":   {"application/json"},
		},
	})
	if err != nil {
		done(false)
		return nil, err
	}
	c.logger.Debug("api request", "method", method, "url", rawURL, "status", resp.StatusCode)

	if ErrorCodes[resp.StatusCode] {
		done(false)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	done(true)
	return resp, nil
}

// errorMessage extracts "msg" from a JSON error body, falling back to the
// raw body.
func errorMessage(resp *Response) string {
	var bundle struct {
		Msg *string `json:"msg"`
	}
	if err := json.Unmarshal(resp.Body, &bundle); err != nil || bundle.Msg == nil {
		return string(resp.Body)
	}
	return *bundle.Msg
}

// get issues an idempotent GET, retrying transport failures with
// exponential backoff. API errors are returned immediately.
func (c *Client) get(ctx context.Context, rawURL string) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoff * time.Duration(1<<uint(attempt-1))
			c.logger.Warn("retrying request after error",
				"url", rawURL,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("GET %s: context cancelled during retry: %w", rawURL, ctx.Err())
			}
		}

		resp, err := c.do(ctx, http.MethodGet, rawURL, nil)
		if err == nil {
			return resp, nil
		}
		var transportErr *TransportError
		if !errors.As(err, &transportErr) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// decodeField decodes the object under key in a response envelope.
func decodeField(resp *Response, key string, v any) error {
	var envelope map[string]json.RawMessage
	if err := resp.JSON(&envelope); err != nil {
		return err
	}
	raw, ok := envelope[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Status reports the service status.
func (c *Client) Status(ctx context.Context) (Entity, error) {
	resp, err := c.get(ctx, c.BuildURL("status", ""))
	if err != nil {
		return nil, err
	}
	var status Entity
	if err := resp.JSON(&status); err != nil {
		return nil, err
	}
	return status, nil
}

// Graph fetches a graph with its nodes, edges and types.
func (c *Client) Graph(ctx context.Context, id string) (*Graph, error) {
	resp, err := c.get(ctx, c.BuildURL("graphs", id))
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := decodeField(resp, "graph", &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Node fetches a single node.
func (c *Client) Node(ctx context.Context, id string) (Node, error) {
	resp, err := c.get(ctx, c.BuildURL("nodes", id))
	if err != nil {
		return Node{}, err
	}
	var n Node
	if err := decodeField(resp, "node", &n); err != nil {
		return Node{}, err
	}
	return n, nil
}

// NewGraph creates a graph from metadata and replays signals into it.
// The call is never retried.
func (c *Client) NewGraph(ctx context.Context, req *GraphRequest) (*Graph, error) {
	if req == nil {
		return nil, errors.New("creating graph: request is required")
	}
	resp, err := c.do(ctx, http.MethodPost, c.BuildURL("graphs", ""), req)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := decodeField(resp, "graph", &g); err != nil {
		return nil, err
	}
	c.logger.Debug("created graph", "id", g.ID(), "signals", len(req.Signals))
	return &g, nil
}

// UpdateGraph appends signals to graph id.
func (c *Client) UpdateGraph(ctx context.Context, id string, req *GraphRequest) (*Graph, error) {
	if req == nil {
		return nil, fmt.Errorf("updating graph %s: request is required", id)
	}
	resp, err := c.do(ctx, http.MethodPut, c.BuildURL("graphs/"+id+"/add", ""), req)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := decodeField(resp, "graph", &g); err != nil {
		return nil, err
	}
	c.logger.Debug("updated graph", "id", id, "signals", len(req.Signals))
	return &g, nil
}

// Paths queries routes through graph id. The query is passed through
// as-is, e.g. from, to and limit.
func (c *Client) Paths(ctx context.Context, id string, query url.Values) ([]Path, error) {
	u := c.BuildURL("graphs/"+id+"/paths", "")
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return ParsePaths(resp.Body)
}

// NewGraphFromPaths creates a new graph named name holding the nodes and
// edges of paths found in base.
func (c *Client) NewGraphFromPaths(ctx context.Context, base *Graph, name string, paths ...Path) (*Graph, error) {
	req, err := SubgraphFromPaths(base, name, paths...)
	if err != nil {
		return nil, fmt.Errorf("building graph %q from paths: %w", name, err)
	}
	return c.NewGraph(ctx, req)
}

// ClearGraph deletes every node of graph id, and with them its edges.
func (c *Client) ClearGraph(ctx context.Context, id string) (*Graph, error) {
	g, err := c.Graph(ctx, id)
	if err != nil {
		return nil, err
	}
	signals := ClearSignals(g)
	c.logger.Debug("clearing graph", "id", id, "nodes", len(signals))
	return c.UpdateGraph(ctx, id, &GraphRequest{Metadata: Entity{}, Signals: signals})
}
