package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/core/apperror"
)

func TestValidate(t *testing.T) {
	valid := func() *Product {
		return New("widget", decimal.RequireFromString("10.00"), "tools", 5)
	}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{"valid", func(p *Product) {}, false},
		{"zero stock is valid", func(p *Product) { p.Stock = 0 }, false},
		{"missing name", func(p *Product) { p.Name = "" }, true},
		{"missing category", func(p *Product) { p.Category = "" }, true},
		{"zero price", func(p *Product) { p.Price = decimal.Zero }, true},
		{"negative price", func(p *Product) { p.Price = decimal.RequireFromString("-1") }, true},
		{"negative stock", func(p *Product) { p.Stock = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := p.Validate(context.Background())
			if tt.wantErr {
				if !apperror.IsCode(err, apperror.CodeValidation) {
					t.Fatalf("expected VALIDATION_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewAssignsDefaults(t *testing.T) {
	p := New("widget", decimal.RequireFromString("10.00"), "tools", 5)

	if p.ID.String() == "" {
		t.Error("expected generated ID")
	}
	if p.Version != 1 {
		t.Errorf("expected version 1, got %d", p.Version)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps set")
	}
}
