package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/auth"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/orders"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubOrderStore struct {
	conf    orders.Confirmation
	err     error
	submits int
	status  orders.Status
}

func (s *stubOrderStore) SubmitOrderTx(_ context.Context, _ string, _ orders.CustomerDetails, _ []orders.CartItem) (orders.Confirmation, error) {
	s.submits++
	if s.err != nil {
		return orders.Confirmation{}, s.err
	}
	return s.conf, nil
}

func (s *stubOrderStore) GetOrderStatus(_ context.Context, _ string) (orders.Status, error) {
	if s.status == "" {
		return "", errors.New("no rows")
	}
	return s.status, nil
}

type stubPublisher struct{ published [][]byte }

func (p *stubPublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	p.published = append(p.published, value)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := &auth.Claims{UserID: "u-7", Email: "buyer@example.com"}
	return req.WithContext(context.WithValue(req.Context(), claimsKey, claims))
}

func submitBody(productID string) string {
	return fmt.Sprintf(`{
		"customerDetails": {"name": "Jane", "email": "jane@example.com", "phone": "+15551234567"},
		"cartItems": [{"productId": %q, "quantity": 1}]
	}`, productID)
}

func newOrdersHandler(store *stubOrderStore, pub *stubPublisher) *OrdersHandler {
	return &OrdersHandler{Store: store, Producer: pub, Service: "test-api"}
}

func withChiParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSubmitOrderSuccess(t *testing.T) {
	store := &stubOrderStore{conf: orders.Confirmation{
		OrderID:     "ord-1",
		TotalAmount: decimal.RequireFromString("19.99"),
		Lines: []orders.Line{
			{ProductID: "p1", Name: "Ebook", Quantity: 1, PriceAtPurchase: decimal.RequireFromString("19.99")},
		},
	}}
	pub := &stubPublisher{}
	h := newOrdersHandler(store, pub)

	rec := httptest.NewRecorder()
	h.submitOrder(rec, authedRequest(http.MethodPost, "/api/submit-order", submitBody("p1")))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message     string `json:"message"`
		OrderID     string `json:"orderId"`
		TotalAmount string `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Order placed successfully!", resp.Message)
	require.Equal(t, "ord-1", resp.OrderID)
	require.Equal(t, "19.99", resp.TotalAmount)

	// exactly one event, carrying the committed order
	require.Len(t, pub.published, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.published[0], &env))
	require.Equal(t, orders.EventOrderPlaced, env.EventType)
	require.Equal(t, "ord-1", env.CorrelationID)
}

func TestSubmitOrderValidationNeverTouchesStore(t *testing.T) {
	cases := []string{
		`{"customerDetails": {"name": "", "email": "jane@example.com", "phone": "1"}, "cartItems": [{"productId": "p1"}]}`,
		`{"customerDetails": {"name": "Jane", "email": "bad-email", "phone": "1"}, "cartItems": [{"productId": "p1"}]}`,
		`{"customerDetails": {"name": "Jane", "email": "jane@example.com", "phone": "1"}, "cartItems": []}`,
		`{not json`,
	}
	for _, body := range cases {
		store := &stubOrderStore{}
		h := newOrdersHandler(store, &stubPublisher{})

		rec := httptest.NewRecorder()
		h.submitOrder(rec, authedRequest(http.MethodPost, "/api/submit-order", body))

		require.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
		require.Zero(t, store.submits, "store must not be called, body=%s", body)
	}
}

func TestSubmitOrderUnknownProduct(t *testing.T) {
	store := &stubOrderStore{err: fmt.Errorf("%w: p-missing", orders.ErrProductNotFound)}
	pub := &stubPublisher{}
	h := newOrdersHandler(store, pub)

	rec := httptest.NewRecorder()
	h.submitOrder(rec, authedRequest(http.MethodPost, "/api/submit-order", submitBody("p-missing")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "p-missing")
	require.Empty(t, pub.published)
}

func TestSubmitOrderStoreFailure(t *testing.T) {
	store := &stubOrderStore{err: errors.New("connection reset")}
	pub := &stubPublisher{}
	h := newOrdersHandler(store, pub)

	rec := httptest.NewRecorder()
	h.submitOrder(rec, authedRequest(http.MethodPost, "/api/submit-order", submitBody("p1")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Server error while processing order.")
	require.Empty(t, pub.published)
}

func TestGetOrderFallsBackToStore(t *testing.T) {
	store := &stubOrderStore{status: orders.StatusPending}
	h := newOrdersHandler(store, &stubPublisher{})

	req := authedRequest(http.MethodGet, "/api/orders/ord-1", "")
	req = withChiParam(req, "id", "ord-1")
	rec := httptest.NewRecorder()

	h.getOrder(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"pending"}`, rec.Body.String())
}

func TestGetOrderNotFound(t *testing.T) {
	store := &stubOrderStore{}
	h := newOrdersHandler(store, &stubPublisher{})

	req := withChiParam(authedRequest(http.MethodGet, "/api/orders/nope", ""), "id", "nope")
	rec := httptest.NewRecorder()

	h.getOrder(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
