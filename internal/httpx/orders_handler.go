package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/orders"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// OrderStore is the transactional checkout surface implemented by *orders.Repo.
type OrderStore interface {
	SubmitOrderTx(ctx context.Context, userID string, cust orders.CustomerDetails, items []orders.CartItem) (orders.Confirmation, error)
	GetOrderStatus(ctx context.Context, orderID string) (orders.Status, error)
}

// Publisher is the async event sink implemented by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Store    OrderStore
	Producer Publisher
	Redis    *redis.Client
	Service  string
}

type SubmitOrderReq struct {
	CustomerDetails orders.CustomerDetails `json:"customerDetails"`
	CartItems       []orders.CartItem      `json:"cartItems"`
}

type SubmitOrderResp struct {
	Message     string          `json:"message"`
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (h *OrdersHandler) Register(r *chi.Mux, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/api/submit-order", h.submitOrder)
	r.With(requireAuth).Get("/api/orders/{id}", h.getOrder)
}

func (h *OrdersHandler) submitOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	var req SubmitOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := orders.ValidateSubmission(req.CustomerDetails, req.CartItems); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The user identity comes from the verified claims, never the body.
	conf, err := h.Store.SubmitOrderTx(ctx, claims.UserID, req.CustomerDetails, req.CartItems)
	if err != nil {
		if errors.Is(err, orders.ErrProductNotFound) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("order submission failed")
		writeMessage(w, http.StatusInternalServerError, "Server error while processing order.")
		return
	}

	// Everything past this point is best-effort: the order is committed and the
	// 201 below must not be disturbed by cache or publish trouble.
	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, conf.OrderID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
	}
	h.publishOrderPlaced(r, claims.UserID, claims.Email, req.CustomerDetails, conf)

	writeJSON(w, http.StatusCreated, SubmitOrderResp{
		Message:     "Order placed successfully!",
		OrderID:     conf.OrderID,
		TotalAmount: conf.TotalAmount,
	})
}

func (h *OrdersHandler) publishOrderPlaced(r *http.Request, userID, userEmail string, cust orders.CustomerDetails, conf orders.Confirmation) {
	payload, err := json.Marshal(orders.OrderPlacedPayload{
		OrderID:     conf.OrderID,
		UserID:      userID,
		UserEmail:   userEmail,
		Customer:    cust,
		Items:       conf.Lines,
		TotalAmount: conf.TotalAmount,
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", conf.OrderID).Msg("order event marshal failed")
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: conf.OrderID,
		Payload:       payload,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("order_id", conf.OrderID).Msg("order event marshal failed")
		return
	}
	h.Producer.Publish(orders.PartitionKey(conf.OrderID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeMessage(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	status, err := h.Store.GetOrderStatus(ctx, orderID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	body := map[string]any{"status": status}
	b, _ := json.Marshal(body)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
