package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
)

const (
	defaultBaseURL            = "https://admin.refabry.com/api"
	productsPath              = "all/product/get"
	createOrderPath           = "public/order/create"
	defaultTimeout            = 10 * time.Second
	errorBodyReadLimit  int64 = 4096
)

var errInvalidBaseURL = errors.New("shop api base url must be an absolute http(s) url")

// Client talks to the remote catalog and order-creation endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a client rooted at baseURL. An empty baseURL selects the public Refabry API.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errInvalidBaseURL
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ListProducts fetches the full catalog. A response without data.data yields an empty list.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop api client not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(productsPath), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build product list request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute product list request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "product list request failed")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product list response")
	}
	return productsAt(envelope.Data)
}

// productsAt reads the product list at data.data. Any other shape of the outer
// data field means there is no list.
func productsAt(data json.RawMessage) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return []Product{}, nil
	}
	var page struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product list response")
	}
	inner := bytes.TrimSpace(page.Data)
	if len(inner) == 0 || inner[0] != '[' {
		return []Product{}, nil
	}
	var products []Product
	if err := json.Unmarshal(inner, &products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product list response")
	}
	if products == nil {
		return []Product{}, nil
	}
	return products, nil
}

// CreateOrder posts an order. Non-2xx responses carrying a message are reported as
// remote validation errors with the message verbatim; anything else is a dependency error.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop api client not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(createOrderPath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute order request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		if msg := remoteMessage(body); msg != "" {
			return nil, pkgerrors.New(pkgerrors.CodeRemoteValidation, msg).
				WithDetails(map[string]any{"status": resp.StatusCode})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("request failed with status code %d", resp.StatusCode), "order request failed")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order response")
	}
	out := &OrderResponse{Raw: json.RawMessage(raw)}
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, out)
	}
	return out, nil
}

func remoteMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch v := payload.Message.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
