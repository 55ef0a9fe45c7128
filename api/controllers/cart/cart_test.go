package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateoquiroz/bookhaven-backend/api/middleware"
	cartsvc "github.com/mateoquiroz/bookhaven-backend/internal/cart"
	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
)

type stubService struct {
	items     []models.CartLineItem
	added     *models.CartLineItem
	updated   *models.CartLineItem
	removed   []uuid.UUID
	cleared   bool
	err       error
	lastInput cartsvc.AddItemInput
}

func (s *stubService) GetCart(_ context.Context, _ uuid.UUID) ([]models.CartLineItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *stubService) AddItem(_ context.Context, _ uuid.UUID, input cartsvc.AddItemInput) (*models.CartLineItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastInput = input
	return s.added, nil
}

func (s *stubService) UpdateItem(_ context.Context, _ uuid.UUID, _ cartsvc.UpdateItemInput) (*models.CartLineItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.updated, nil
}

func (s *stubService) RemoveItem(_ context.Context, _ uuid.UUID, itemID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.removed = append(s.removed, itemID)
	return nil
}

func (s *stubService) Clear(_ context.Context, _ uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = true
	return nil
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func lineItemFixture() models.CartLineItem {
	final := decimal.NewFromFloat(29.99)
	return models.CartLineItem{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		BookID:     uuid.New(),
		FormatID:   uuid.New(),
		Quantity:   2,
		BookTitle:  "Station Eleven",
		FormatType: models.BookFormatHardcover,
		Price:      decimal.NewFromFloat(34.99),
		FinalPrice: &final,
	}
}

func TestFetchReturnsCartWithTotals(t *testing.T) {
	item := lineItemFixture()
	svc := &stubService{items: []models.CartLineItem{item}}

	resp := httptest.NewRecorder()
	Fetch(svc, nil).ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var payload struct {
		Data Cart `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.Data.Items))
	}
	if payload.Data.TotalItems != 2 {
		t.Fatalf("expected total items 2, got %d", payload.Data.TotalItems)
	}
	want := decimal.NewFromFloat(59.98)
	if !payload.Data.TotalPrice.Equal(want) {
		t.Fatalf("expected total price %s, got %s", want, payload.Data.TotalPrice)
	}
}

func TestFetchRequiresUserContext(t *testing.T) {
	svc := &stubService{}
	resp := httptest.NewRecorder()
	Fetch(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddItemReturnsCreated(t *testing.T) {
	item := lineItemFixture()
	svc := &stubService{added: &item}

	body := `{"productId":"` + item.BookID.String() + `","productFormatId":"` + item.FormatID.String() + `","quantity":2}`
	resp := httptest.NewRecorder()
	AddItem(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastInput.BookID != item.BookID || svc.lastInput.Quantity != 2 {
		t.Fatalf("unexpected service input: %+v", svc.lastInput)
	}
	var payload struct {
		Data LineItem `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.ID != item.ID {
		t.Fatalf("expected line item id %s, got %s", item.ID, payload.Data.ID)
	}
}

func TestAddItemRejectsMalformedBody(t *testing.T) {
	svc := &stubService{}
	resp := httptest.NewRecorder()
	AddItem(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":0}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateItemMapsServiceError(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}
	body := `{"cartItemId":"` + uuid.NewString() + `","quantity":3}`
	resp := httptest.NewRecorder()
	UpdateItem(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPatch, "/api/v1/cart/items", body))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRemoveItemParsesPathParam(t *testing.T) {
	svc := &stubService{}
	itemID := uuid.New()

	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), "")
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemID", itemID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	RemoveItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.removed) != 1 || svc.removed[0] != itemID {
		t.Fatalf("expected removal of %s, got %v", itemID, svc.removed)
	}
}

func TestRemoveItemRejectsBadID(t *testing.T) {
	svc := &stubService{}
	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", "")
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	RemoveItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestClearWipesCart(t *testing.T) {
	svc := &stubService{}
	resp := httptest.NewRecorder()
	Clear(svc, nil).ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.cleared {
		t.Fatal("expected clear to reach the service")
	}
}
