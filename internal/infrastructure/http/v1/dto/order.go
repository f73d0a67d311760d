package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/orders"
)

// PlaceOrderRequest for order admission. ProductIDs may repeat: each
// occurrence requests one unit of that product.
type PlaceOrderRequest struct {
	CustomerID string   `json:"customerId" binding:"required"`
	ProductIDs []string `json:"productIds" binding:"required,min=1"`
}

// UpdateOrderStatusRequest for status changes.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is one snapshot line of an order.
type OrderItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// OrderResponse contains order fields.
type OrderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customerId"`
	Items      []OrderItemResponse `json:"items"`
	Status     string              `json:"status"`
	Version    int                 `json:"version"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// FromOrder creates OrderResponse from an order record.
func FromOrder(o *orders.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return OrderResponse{
		ID:         o.ID.String(),
		CustomerID: o.CustomerID,
		Items:      items,
		Status:     string(o.Status),
		Version:    o.Version,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// OrderListResponse wraps a customer's order history.
type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	TotalCount int             `json:"totalCount"`
}
