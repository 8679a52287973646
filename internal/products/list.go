package products

import (
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/enums"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategorySlug string
	Search       string
	Featured     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	// IncludeInactive is only honored for console listings.
	IncludeInactive bool
}

// ListInput captures the inputs needed to paginate, filter, and sort the
// catalog.
type ListInput struct {
	Filters    ListFilters
	Sort       enums.ProductSort
	Pagination pagination.Params
}
