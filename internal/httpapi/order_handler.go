package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/timeslot"
)

// OrderPublisher emits the order-created event after a successful write.
// Publishing is best effort; a broker outage never fails the order.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

type OrderHandler struct {
	repo      order.Repository
	publisher OrderPublisher
	logger    *log.Logger
}

func NewOrderHandler(repo order.Repository, publisher OrderPublisher, logger *log.Logger) *OrderHandler {
	return &OrderHandler{repo: repo, publisher: publisher, logger: logger}
}

type orderItemRequest struct {
	ProductID           string `json:"productId" validate:"required"`
	ProductName         string `json:"productName" validate:"required"`
	ProductPriceInCents int    `json:"productPriceInCents" validate:"gte=0"`
	Quantity            int    `json:"quantity" validate:"gt=0"`
	SubtotalInCents     int    `json:"subtotalInCents" validate:"gte=0"`
}

type createOrderRequest struct {
	Items                 []orderItemRequest  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod         order.PaymentMethod `json:"paymentMethod" validate:"required"`
	RegionID              string              `json:"regionId"`
	CampingLocationID     string              `json:"campingLocationId" validate:"required"`
	CustomAddress         string              `json:"customAddress"`
	TotalAmountInCents    int                 `json:"totalAmountInCents" validate:"gte=0"`
	EstimatedDeliveryTime string              `json:"estimatedDeliveryTime"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())

	var in createOrderRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if !order.ValidPaymentMethod(in.PaymentMethod) {
		writeError(w, http.StatusBadRequest, "Geçersiz ödeme yöntemi")
		return
	}

	o := order.Order{
		UserID:                sess.UserID,
		Status:                order.StatusPreparing,
		TotalAmountInCents:    in.TotalAmountInCents,
		PaymentMethod:         in.PaymentMethod,
		CustomAddress:         in.CustomAddress,
		EstimatedDeliveryTime: in.EstimatedDeliveryTime,
	}
	if in.RegionID != "" {
		o.RegionID = &in.RegionID
	}
	o.CampingLocationID = &in.CampingLocationID
	for _, it := range in.Items {
		o.Items = append(o.Items, order.Item{
			ProductID:           it.ProductID,
			ProductName:         it.ProductName,
			ProductPriceInCents: it.ProductPriceInCents,
			Quantity:            it.Quantity,
			SubtotalInCents:     it.SubtotalInCents,
		})
	}

	if err := h.repo.Create(r.Context(), &o); err != nil {
		var stockErr *order.InsufficientStockError
		if errors.As(err, &stockErr) {
			writeError(w, http.StatusConflict, "Yetersiz stok: "+stockErr.ProductName)
			return
		}
		h.logger.Printf("create order: %v", err)
		writeError(w, http.StatusInternalServerError, "Sipariş oluşturulamadı")
		return
	}

	if err := h.publisher.PublishOrderCreated(r.Context(), &o); err != nil {
		h.logger.Printf("publish order created: %v", err)
	}

	writeJSON(w, http.StatusCreated, o)
}

// ListOrders returns the caller's own orders; staff see every order.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())

	userID := sess.UserID
	if sess.Role.Staff() {
		userID = ""
	}
	orders, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.Printf("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "Siparişler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(orders))
}

func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context(), "")
	if err != nil {
		h.logger.Printf("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "Siparişler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(orders))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())

	o, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sipariş bulunamadı")
			return
		}
		h.logger.Printf("get order: %v", err)
		writeError(w, http.StatusInternalServerError, "Sipariş yüklenemedi")
		return
	}
	if !sess.Role.Staff() && o.UserID != sess.UserID {
		writeError(w, http.StatusForbidden, "Bu siparişi görüntüleme yetkiniz yok")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status order.Status `json:"status" validate:"required"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in updateStatusRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if !order.ValidStatus(in.Status) {
		writeError(w, http.StatusBadRequest, "Geçersiz sipariş durumu")
		return
	}

	o, err := h.repo.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sipariş bulunamadı")
			return
		}
		h.logger.Printf("update order status: %v", err)
		writeError(w, http.StatusInternalServerError, "Sipariş durumu güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.DashboardStats(r.Context(), timeslot.ServiceNow())
	if err != nil {
		h.logger.Printf("dashboard stats: %v", err)
		writeError(w, http.StatusInternalServerError, "İstatistikler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
