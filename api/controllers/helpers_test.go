package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/refabry-storefront/api/middleware"
	"github.com/angelmondragon/refabry-storefront/internal/catalog"
	"github.com/angelmondragon/refabry-storefront/internal/shoppers"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
	"github.com/angelmondragon/refabry-storefront/pkg/slots"
)

const (
	testSession   = "session-test-1"
	testImageBase = "https://cdn.example.com/product"
)

type stubSource struct {
	mu       sync.Mutex
	products []shopapi.Product
	err      error
	calls    int
}

func (s *stubSource) ListProducts(context.Context) ([]shopapi.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]shopapi.Product{}, s.products...), nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubCreator struct {
	mu       sync.Mutex
	requests []shopapi.OrderRequest
	err      error
}

func (s *stubCreator) CreateOrder(_ context.Context, req shopapi.OrderRequest) (*shopapi.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &shopapi.OrderResponse{Status: true, Message: "Order placed"}, nil
}

func (s *stubCreator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func wireProduct(id int, name, price string) shopapi.Product {
	return shopapi.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Image: name + ".jpg",
		Stock: 5,
	}
}

func defaultProducts() []shopapi.Product {
	return []shopapi.Product{
		wireProduct(1, "Cotton Saree", "1500"),
		wireProduct(2, "Silk Panjabi", "900"),
		wireProduct(3, "Linen Kurti", "1200"),
	}
}

type fixture struct {
	source   *stubSource
	creator  *stubCreator
	catalog  *catalog.Store
	registry *shoppers.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	source := &stubSource{products: defaultProducts()}
	creator := &stubCreator{}
	registry, err := shoppers.NewRegistry(shoppers.RegistryParams{
		Backend: slots.NewMemory(),
		Orders:  creator,
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return &fixture{
		source:   source,
		creator:  creator,
		catalog:  catalog.NewStore(source, logger.Nop(), nil),
		registry: registry,
	}
}

func (f *fixture) session(t *testing.T) *shoppers.Session {
	t.Helper()
	sess, err := f.registry.Get(context.Background(), testSession)
	require.NoError(t, err)
	return sess
}

// serve runs h with the test session and optional chi url params.
func serve(h http.Handler, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithSessionID(ctx, testSession)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func httptestNoSession(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	return rec
}
