// Package checkout holds the pure pricing rules shared by the cart, the
// checkout flow, and order creation. All money values are decimal taka.
package checkout

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ShippingRates carries the flat delivery charges by destination zone.
type ShippingRates struct {
	InsideDhaka  decimal.Decimal
	OutsideDhaka decimal.Decimal
}

// DefaultShippingRates mirrors the standard storefront configuration.
func DefaultShippingRates() ShippingRates {
	return ShippingRates{
		InsideDhaka:  decimal.NewFromInt(60),
		OutsideDhaka: decimal.NewFromInt(120),
	}
}

// DiscountedUnitPrice applies a percentage discount to a unit price,
// rounded to two decimal places.
func DiscountedUnitPrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return price.Round(2)
	}
	factor := hundred.Sub(discountPercent).Div(hundred)
	return price.Mul(factor).Round(2)
}

// LineTotal is the discounted unit price multiplied by quantity.
func LineTotal(price, discountPercent decimal.Decimal, quantity int) decimal.Decimal {
	return DiscountedUnitPrice(price, discountPercent).Mul(decimal.NewFromInt(int64(quantity)))
}

// Line is the pricing view of one cart row.
type Line struct {
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Quantity        int
}

// Subtotal sums the discounted line totals of all rows.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line.UnitPrice, line.DiscountPercent, line.Quantity))
	}
	return sum
}

// ShippingCharge selects the flat rate by district. Only the Dhaka district
// qualifies for the inside-city rate.
func ShippingCharge(rates ShippingRates, district string) decimal.Decimal {
	if NormalizeDistrict(district) == "Dhaka" {
		return rates.InsideDhaka
	}
	return rates.OutsideDhaka
}

// Quote is a full price breakdown for a checkout attempt.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// PriceOrder computes the complete quote for a set of lines shipped to the
// given district.
func PriceOrder(rates ShippingRates, lines []Line, district string) Quote {
	subtotal := Subtotal(lines)
	shipping := ShippingCharge(rates, district)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}
