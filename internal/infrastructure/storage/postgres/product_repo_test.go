package postgres

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog/product"
)

func newTestProductRepo() *ProductRepo {
	return &ProductRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func TestBuildListQuery(t *testing.T) {
	repo := newTestProductRepo()

	category := "tools"
	minPrice := decimal.RequireFromString("10.00")
	maxPrice := decimal.RequireFromString("99.90")

	const selectPrefix = "SELECT id, name, price, description, category, stock, version, created_at, updated_at FROM products"

	tests := []struct {
		name     string
		filter   product.ListFilter
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "no filter",
			filter:   product.ListFilter{},
			wantSQL:  selectPrefix + " ORDER BY id",
			wantArgs: 0,
		},
		{
			name:     "category",
			filter:   product.ListFilter{Category: &category},
			wantSQL:  selectPrefix + " WHERE category = $1 ORDER BY id",
			wantArgs: 1,
		},
		{
			name:     "price range",
			filter:   product.ListFilter{MinPrice: &minPrice, MaxPrice: &maxPrice},
			wantSQL:  selectPrefix + " WHERE price >= $1 AND price <= $2 ORDER BY id",
			wantArgs: 2,
		},
		{
			name:     "all filters",
			filter:   product.ListFilter{Category: &category, MinPrice: &minPrice, MaxPrice: &maxPrice},
			wantSQL:  selectPrefix + " WHERE category = $1 AND price >= $2 AND price <= $3 ORDER BY id",
			wantArgs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.buildListQuery(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args count mismatch\nwant: %d\ngot:  %d", tt.wantArgs, len(args))
			}
		})
	}
}
