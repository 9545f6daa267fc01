package catalog_test

import (
	"net/http"
	"testing"

	"cafe.GO/api/apitest"
	"cafe.GO/model/catalog"
	productService "cafe.GO/service/product"
)

func seeded(t *testing.T) *apitest.Server {
	t.Helper()
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	s.Seed(t, "mocha", "Mocha", "Coffee", "5.00")
	s.Seed(t, "bagel", "Bagel", "Breakfast", "3.25")
	return s
}

func TestHealth(t *testing.T) {
	s := apitest.New(t)
	rec := s.NewClient().Do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListProducts_ByCategory(t *testing.T) {
	s := seeded(t)
	rec := s.NewClient().Do(t, http.MethodGet, "/products?category=Coffee&page_size=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var page productService.Page
	apitest.Decode(t, rec, &page)
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("got total=%d items=%d, want 2/2", page.Total, len(page.Items))
	}
	if page.PageSize != 10 || page.Page != 1 {
		t.Errorf("page=%d size=%d", page.Page, page.PageSize)
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("missing X-Request-Duration-ms header")
	}
}

func TestListProducts_BadFeatured(t *testing.T) {
	s := apitest.New(t)
	rec := s.NewClient().Do(t, http.MethodGet, "/products?featured=maybe", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProductDetail(t *testing.T) {
	s := seeded(t)
	c := s.NewClient()

	rec := c.Do(t, http.MethodGet, "/products/latte", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var detail productService.Detail
	apitest.Decode(t, rec, &detail)
	if detail.Product.Name != "Latte" {
		t.Errorf("product = %+v", detail.Product)
	}
	if len(detail.Related) != 1 || detail.Related[0].ID != "mocha" {
		t.Errorf("related = %+v, want [mocha]", detail.Related)
	}

	if rec := c.Do(t, http.MethodGet, "/products/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	s := seeded(t)
	c := s.NewClient()

	if rec := c.Do(t, http.MethodGet, "/products/search", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", rec.Code)
	}

	rec := c.Do(t, http.MethodGet, "/products/search?q=bag", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Items []catalog.Product `json:"items"`
		Count int               `json:"count"`
	}
	apitest.Decode(t, rec, &out)
	if out.Count != 1 || out.Items[0].ID != "bagel" {
		t.Errorf("search = %+v", out)
	}
}

func TestCategories(t *testing.T) {
	s := seeded(t)
	rec := s.NewClient().Do(t, http.MethodGet, "/categories", nil)
	var out struct {
		Categories []string `json:"categories"`
	}
	apitest.Decode(t, rec, &out)
	if len(out.Categories) != 2 {
		t.Errorf("categories = %v, want 2", out.Categories)
	}
}
