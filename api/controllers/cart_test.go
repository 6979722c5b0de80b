package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/capitlshop/storefront-backend/api/middleware"
	cartsvc "github.com/capitlshop/storefront-backend/internal/cart"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
	"github.com/capitlshop/storefront-backend/pkg/logger"
	"github.com/capitlshop/storefront-backend/pkg/types"
)

type stubCartService struct {
	view    *cartsvc.ViewDTO
	viewErr error
	added   []string
}

func (s *stubCartService) AddItem(ctx context.Context, shopperID, productID string, quantity int) error {
	s.added = append(s.added, productID)
	return nil
}

func (s *stubCartService) DecrementItem(ctx context.Context, shopperID, productID string, amount int) error {
	return nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, shopperID, productID string) error {
	return nil
}

func (s *stubCartService) View(ctx context.Context, shopperID string) (*cartsvc.ViewDTO, error) {
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return s.view, nil
}

func (s *stubCartService) Close() {}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithUserID(req.Context(), "0f2d7f3e-3f0a-4a7e-9b64-0450d4c5a8e7")
	return req.WithContext(ctx)
}

func TestCartViewWritesEnvelope(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{view: &cartsvc.ViewDTO{
		Lines: []cartsvc.LineDTO{{ProductID: "p-1", Name: "Leather Jacket", UnitPrice: "10.00", Quantity: 2, Total: "20.00"}},
		Summary: cartsvc.SummaryDTO{
			Subtotal: "20.00",
			Shipping: "0.00",
			Total:    "20.00",
		},
	}}

	rec := httptest.NewRecorder()
	CartView(svc, testLogger())(rec, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data cartsvc.ViewDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Summary.Total != "20.00" {
		t.Fatalf("total = %q, want 20.00", envelope.Data.Summary.Total)
	}
}

func TestCartViewRequiresShopper(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	CartView(&stubCartService{}, testLogger())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCartViewSurfacesDependencyFailure(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{viewErr: pkgerrors.New(pkgerrors.CodeDependency, "hydrate cart")}

	rec := httptest.NewRecorder()
	CartView(svc, testLogger())(rec, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeDependency) {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":2}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(svc.added) != 0 {
		t.Fatal("service called despite invalid payload")
	}
}

func TestCartAddItemCreated(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	body := `{"product_id":"0f2d7f3e-3f0a-4a7e-9b64-0450d4c5a8e7","quantity":2}`
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(svc.added) != 1 {
		t.Fatalf("added = %v", svc.added)
	}
}
