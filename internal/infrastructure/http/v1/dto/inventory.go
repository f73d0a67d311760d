package dto

// AdjustStockRequest applies a signed delta to a product's stock.
// Zero is accepted and is a no-op.
type AdjustStockRequest struct {
	Delta *int64 `json:"delta" binding:"required"`
}
