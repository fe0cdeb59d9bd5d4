package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"LutStore/internal/catalog"
	"LutStore/internal/checkout"
	"LutStore/internal/gateway"
	"LutStore/pkg/kit"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{Store: catalog.NewStore()}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	return httptest.NewServer(h)
}

func newCheckoutTS(t *testing.T, catalogURL string) *httptest.Server {
	t.Helper()

	pricer, err := checkout.NewPricer("0.18", "USD")
	if err != nil {
		t.Fatalf("pricer: %v", err)
	}

	s := &checkout.Server{
		Store:          checkout.NewStore(),
		Catalog:        checkout.NewCatalogClient(catalogURL, time.Second),
		Pricer:         pricer,
		Idempotency:    checkout.NewMemIdempotencyStore(),
		IdempotencyTTL: time.Hour,
	}

	h := checkout.NewHandler(s, checkout.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "checkout",
	})

	return httptest.NewServer(h)
}

func newGatewayTS(t *testing.T, catalogURL, checkoutURL string, limiter kit.Limiter) *httptest.Server {
	t.Helper()

	h, err := gateway.NewHandler(
		gateway.Deps{
			CatalogURL:      catalogURL,
			CheckoutURL:     checkoutURL,
			CheckoutLimiter: limiter,
			RateLimitWindow: time.Minute,
		},
		gateway.HTTPDeps{
			Log:     zap.NewNop(),
			Service: "gateway",
		},
	)
	if err != nil {
		t.Fatalf("gateway.NewHandler: %v", err)
	}

	return httptest.NewServer(h)
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestGateway_PublicAPI_HappyPath(t *testing.T) {
	catalogTS := newCatalogTS(t)
	t.Cleanup(catalogTS.Close)

	checkoutTS := newCheckoutTS(t, catalogTS.URL)
	t.Cleanup(checkoutTS.Close)

	gwTS := newGatewayTS(t, catalogTS.URL, checkoutTS.URL, kit.NewIPRateLimiter(30, time.Minute))
	t.Cleanup(gwTS.Close)

	c := &http.Client{}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/api/products", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d", resp.StatusCode)
		}
		var products []catalog.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v body=%s", err, string(raw))
		}
		if len(products) != 4 {
			t.Fatalf("products=%d", len(products))
		}
	}

	for _, path := range []string{
		"/api/products/featured",
		"/api/products/1",
		"/api/products/category/luts",
		"/api/reviews",
		"/api/reviews/product/2",
		"/api/before-after",
		"/api/before-after/product/2",
	} {
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, resp.StatusCode, string(raw))
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, gwTS.URL+"/api/products/999", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("missing product status=%d", resp.StatusCode)
		}
	}

	var created checkout.Order
	{
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/api/checkout/orders", map[string]any{
			"email": "user@example.com",
			"items": []map[string]any{
				{"productId": "1", "quantity": 2},
				{"productId": "2", "quantity": 1},
			},
		}, nil)

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create order status=%d body=%s", resp.StatusCode, string(raw))
		}

		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode order: %v body=%s", err, string(raw))
		}

		if created.Quote.Total != "121.54" {
			t.Fatalf("total=%s", created.Quote.Total)
		}
		if created.ID == "" {
			t.Fatalf("empty order id")
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/api/checkout/orders/"+created.ID, nil, nil)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get order status=%d body=%s", resp.StatusCode, string(raw))
		}

		var got checkout.Order
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode order: %v body=%s", err, string(raw))
		}
		if got.ID != created.ID {
			t.Fatalf("id=%s want=%s", got.ID, created.ID)
		}
		if got.Quote.Total != created.Quote.Total {
			t.Fatalf("total=%s want=%s", got.Quote.Total, created.Quote.Total)
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("readyz status=%d", resp.StatusCode)
		}
	}
}

func TestGateway_PublicAPI_CheckoutRateLimited(t *testing.T) {
	catalogTS := newCatalogTS(t)
	t.Cleanup(catalogTS.Close)

	checkoutTS := newCheckoutTS(t, catalogTS.URL)
	t.Cleanup(checkoutTS.Close)

	gwTS := newGatewayTS(t, catalogTS.URL, checkoutTS.URL, kit.NewIPRateLimiter(2, time.Minute))
	t.Cleanup(gwTS.Close)

	c := &http.Client{}
	body := map[string]any{"items": []map[string]any{{"productId": "3", "quantity": 1}}}

	for i := 0; i < 2; i++ {
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/api/checkout/quote", body, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("quote %d status=%d body=%s", i, resp.StatusCode, string(raw))
		}
	}

	resp, _ := doJSON(t, c, http.MethodPost, gwTS.URL+"/api/checkout/quote", body, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	// reads are not limited
	resp, _ = doJSON(t, c, http.MethodGet, gwTS.URL+"/api/products", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("products status=%d", resp.StatusCode)
	}
}

func TestGateway_UpstreamDown(t *testing.T) {
	catalogTS := newCatalogTS(t)
	catalogURL := catalogTS.URL
	catalogTS.Close()

	checkoutTS := newCheckoutTS(t, catalogURL)
	t.Cleanup(checkoutTS.Close)

	gwTS := newGatewayTS(t, catalogURL, checkoutTS.URL, nil)
	t.Cleanup(gwTS.Close)

	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/api/products", nil, nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
	var e kit.ErrorResponse
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Message != "catalog not ready" {
		t.Fatalf("message=%q", e.Message)
	}
}

func TestGateway_RejectsRelativeUpstream(t *testing.T) {
	_, err := gateway.NewHandler(gateway.Deps{CatalogURL: "catalog:8082", CheckoutURL: "http://checkout:8083"}, gateway.HTTPDeps{})
	if err == nil {
		t.Fatalf("expected error for relative upstream url")
	}
}
