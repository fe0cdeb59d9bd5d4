package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"LutStore/internal/catalog"
	"LutStore/pkg/kit"
)

func newCatalogTS(t *testing.T, s *catalog.Server) *httptest.Server {
	t.Helper()

	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
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

	resp, err := http.DefaultClient.Do(req)
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

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return v
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func productID(p catalog.Product) string { return p.ID }
func reviewID(r catalog.Review) string  { return r.ID }

func TestCatalog_ReadRoutes(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore()})

	t.Run("all products", func(t *testing.T) {
		resp, raw := do(t, http.MethodGet, ts.URL+"/api/products", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("content-type=%q", ct)
		}
		got := ids(decode[[]catalog.Product](t, raw), productID)
		if strings.Join(got, ",") != "1,2,3,4" {
			t.Fatalf("ids=%v", got)
		}
	})

	t.Run("product by id", func(t *testing.T) {
		resp, raw := do(t, http.MethodGet, ts.URL+"/api/products/3", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		p := decode[map[string]any](t, raw)
		if p["name"] != "JAY v1 LUT PACK" || p["salePrice"] != "31.00" || p["price"] != "41.00" {
			t.Fatalf("product=%v", p)
		}
	})

	t.Run("null optional fields", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/products/1", nil)
		p := decode[map[string]any](t, raw)
		v, ok := p["hoverImageUrl"]
		if !ok || v != nil {
			t.Fatalf("hoverImageUrl=%v present=%v", v, ok)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		resp, raw := do(t, http.MethodGet, ts.URL+"/api/products/999", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		e := decode[kit.ErrorResponse](t, raw)
		if e.Message != "Product not found" {
			t.Fatalf("message=%q", e.Message)
		}
	})

	t.Run("featured", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/products/featured", nil)
		got := decode[[]catalog.Product](t, raw)
		if len(got) != 4 {
			t.Fatalf("featured=%d", len(got))
		}
	})

	t.Run("category", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/products/category/luts", nil)
		got := ids(decode[[]catalog.Product](t, raw), productID)
		if strings.Join(got, ",") != "2,3" {
			t.Fatalf("ids=%v", got)
		}
	})

	t.Run("unknown category is empty array", func(t *testing.T) {
		resp, raw := do(t, http.MethodGet, ts.URL+"/api/products/category/presets", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
		if strings.TrimSpace(string(raw)) != "[]" {
			t.Fatalf("body=%s", raw)
		}
	})

	t.Run("reviews newest first", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/reviews", nil)
		got := ids(decode[[]catalog.Review](t, raw), reviewID)
		if strings.Join(got, ",") != "1,2,3,4,5,6" {
			t.Fatalf("ids=%v", got)
		}
	})

	t.Run("reviews for product", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/reviews/product/2", nil)
		got := ids(decode[[]catalog.Review](t, raw), reviewID)
		if strings.Join(got, ",") != "1,3" {
			t.Fatalf("ids=%v", got)
		}
	})

	t.Run("before after", func(t *testing.T) {
		_, raw := do(t, http.MethodGet, ts.URL+"/api/before-after", nil)
		got := decode[[]catalog.BeforeAfter](t, raw)
		if len(got) != 1 || got[0].ProductID != "2" {
			t.Fatalf("pairs=%v", got)
		}

		_, raw = do(t, http.MethodGet, ts.URL+"/api/before-after/product/1", nil)
		if strings.TrimSpace(string(raw)) != "[]" {
			t.Fatalf("body=%s", raw)
		}
	})

	t.Run("probes", func(t *testing.T) {
		for _, p := range []string{"/healthz", "/readyz"} {
			resp, _ := do(t, http.MethodGet, ts.URL+p, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("%s status=%d", p, resp.StatusCode)
			}
		}
	})
}

func TestCatalog_WritesDisabledByDefault(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore()})

	for _, p := range []string{"/api/products", "/api/reviews", "/api/before-after"} {
		resp, _ := do(t, http.MethodPost, ts.URL+p, map[string]any{"name": "x"})
		if resp.StatusCode != http.StatusMethodNotAllowed && resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s status=%d", p, resp.StatusCode)
		}
	}
}

func TestCatalog_CreateProduct(t *testing.T) {
	store := catalog.NewMemStore()
	ts := newCatalogTS(t, &catalog.Server{Store: store, WritesEnabled: true})

	resp, raw := do(t, http.MethodPost, ts.URL+"/api/products", map[string]any{
		"id":          "1",
		"name":        "Mono Pack",
		"description": "black and white looks",
		"price":       "25.00",
		"category":    "luts",
		"imageUrl":    "https://cdn.example.com/mono.jpg",
		"isFeatured":  false,
		"tags":        []string{"bw"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	p := decode[catalog.Product](t, raw)
	if p.ID == "" || p.ID == "1" {
		t.Fatalf("id=%q, want fresh id", p.ID)
	}

	resp, raw = do(t, http.MethodGet, ts.URL+"/api/products/"+p.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d", resp.StatusCode)
	}
	if got := decode[catalog.Product](t, raw); got.Name != "Mono Pack" {
		t.Fatalf("name=%q", got.Name)
	}

	_, raw = do(t, http.MethodGet, ts.URL+"/api/products/category/luts", nil)
	got := ids(decode[[]catalog.Product](t, raw), productID)
	if strings.Join(got, ",") != "2,3,"+p.ID {
		t.Fatalf("ids=%v", got)
	}

	seed, _, _ := store.GetProduct(context.Background(), "1")
	if seed.Name != "JAY's CineKit (DaVinci Powergrade)" {
		t.Fatalf("seed product overwritten: %q", seed.Name)
	}
}

func TestCatalog_CreateProductValidation(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore(), WritesEnabled: true})

	resp, raw := do(t, http.MethodPost, ts.URL+"/api/products", map[string]any{
		"name":     "Broken",
		"price":    "12.345",
		"imageUrl": "nope",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	e := decode[struct {
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}](t, raw)
	for _, f := range []string{"price", "imageUrl", "description", "category"} {
		if _, ok := e.Details[f]; !ok {
			t.Fatalf("details missing %q: %v", f, e.Details)
		}
	}
}

func TestCatalog_CreateReview(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore(), WritesEnabled: true})

	resp, raw := do(t, http.MethodPost, ts.URL+"/api/reviews", map[string]any{
		"productId":    "4",
		"customerName": "Sam",
		"rating":       4,
		"title":        "solid",
		"content":      "burns look great",
		"date":         "1999-01-01T00:00:00Z",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
	r := decode[catalog.Review](t, raw)
	if r.Date.Year() == 1999 {
		t.Fatalf("client date was accepted")
	}

	_, raw = do(t, http.MethodGet, ts.URL+"/api/reviews/product/4", nil)
	got := ids(decode[[]catalog.Review](t, raw), reviewID)
	if len(got) != 3 || got[0] != r.ID {
		t.Fatalf("ids=%v", got)
	}
}

func TestCatalog_CreateRejectsUnknownProduct(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore(), WritesEnabled: true})

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/reviews", map[string]any{
		"productId":    "999",
		"customerName": "Sam",
		"rating":       5,
		"title":        "t",
		"content":      "c",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("review status=%d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/before-after", map[string]any{
		"productId":      "999",
		"beforeImageUrl": "https://cdn.example.com/b.jpg",
		"afterImageUrl":  "https://cdn.example.com/a.jpg",
		"beforeLabel":    "LOG",
		"afterLabel":     "LUT",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("before-after status=%d", resp.StatusCode)
	}
}

func TestCatalog_CreateRejectsBadJSON(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: catalog.NewStore(), WritesEnabled: true})

	resp, err := http.Post(ts.URL+"/api/products", "application/json", strings.NewReader(`{"name":`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCatalog_CreatedCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := &catalog.Server{Store: catalog.NewStore(), WritesEnabled: true}
	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{
		Log:      zap.NewNop(),
		Service:  "catalog",
		Registry: reg,
	}))
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodPost, ts.URL+"/api/before-after", map[string]any{
		"productId":      "3",
		"beforeImageUrl": "https://cdn.example.com/b.jpg",
		"afterImageUrl":  "https://cdn.example.com/a.jpg",
		"beforeLabel":    "LOG",
		"afterLabel":     "LUT",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "catalog_entities_created_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "kind" && l.GetValue() == "before_after" && m.GetCounter().GetValue() == 1 {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("catalog_entities_created_total{kind=before_after} not incremented")
	}
}

type brokenStore struct {
	catalog.Store
}

func (brokenStore) ListProducts(context.Context) ([]catalog.Product, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestCatalog_FaultsAreRedacted(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: brokenStore{}})

	resp, raw := do(t, http.MethodGet, ts.URL+"/api/products", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	e := decode[kit.ErrorResponse](t, raw)
	if e.Message != "Failed to fetch products" {
		t.Fatalf("message=%q", e.Message)
	}
	if e.Details != nil {
		t.Fatalf("details leaked: %v", e.Details)
	}
	if e.RequestID == "" {
		t.Fatalf("missing request_id")
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}

func TestCatalog_FaultsExposedInDev(t *testing.T) {
	ts := newCatalogTS(t, &catalog.Server{Store: brokenStore{}, ExposeErrors: true})

	_, raw := do(t, http.MethodGet, ts.URL+"/api/products", nil)
	e := decode[struct {
		Details map[string]string `json:"details"`
	}](t, raw)
	if e.Details["error"] != "connection refused" {
		t.Fatalf("details=%v", e.Details)
	}
}
