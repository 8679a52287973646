package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trendora/trendora-backend/internal/cart"
	"github.com/trendora/trendora-backend/internal/orders"
	"github.com/trendora/trendora-backend/internal/products"
	pkgcheckout "github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/logger"
)

// Service takes a checkout form and an owner's cart and turns them into a
// persisted order.
type Service interface {
	Submit(ctx context.Context, owner cart.Owner, req SubmitRequest) (*orders.OrderDTO, error)
	Quote(ctx context.Context, owner cart.Owner, district string) (*pkgcheckout.Quote, error)
}

type cartReader interface {
	Find(ctx context.Context, owner cart.Owner) (*models.CartRecord, error)
	FindOrCreate(ctx context.Context, owner cart.Owner) (*models.CartRecord, error)
}

type orderPersister interface {
	Persist(ctx context.Context, order *models.Order, cartID uuid.UUID) (*models.Order, error)
}

type ratesSource interface {
	ShippingRates(ctx context.Context) pkgcheckout.ShippingRates
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Carts  cartReader
	Store  orderPersister
	Rates  ratesSource
	Logger *logger.Logger
}

type service struct {
	carts cartReader
	store orderPersister
	rates ratesSource
	logg  *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart reader is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("order persister is required")
	}
	if params.Rates == nil {
		return nil, fmt.Errorf("shipping rates source is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{carts: params.Carts, store: params.Store, rates: params.Rates, logg: params.Logger}, nil
}

// Submit validates the billing form, prices the cart, and persists the order
// and the cart wipe in one transaction. Validation failures never reach the
// database.
func (s *service) Submit(ctx context.Context, owner cart.Owner, req SubmitRequest) (*orders.OrderDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires a signed-in customer or guest session")
	}
	billing, err := validateBilling(req)
	if err != nil {
		return nil, err
	}

	record, err := s.carts.FindOrCreate(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]pkgcheckout.Line, 0, len(record.Items))
	for i := range record.Items {
		item := &record.Items[i]
		lines = append(lines, pkgcheckout.Line{
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Quantity:        item.Quantity,
		})
	}
	quote := pkgcheckout.PriceOrder(s.rates.ShippingRates(ctx), lines, billing.district)

	order := buildOrder(owner, billing, quote, record.Items)
	created, err := s.store.Persist(ctx, order, record.ID)
	if err != nil {
		if errors.Is(err, products.ErrInsufficientStock) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "one or more items are out of stock")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": created.ID.String(),
		"total":    created.Total.String(),
	}), "order placed")
	return orders.ToDTO(created), nil
}

// Quote prices the current cart against a district without persisting
// anything, for the checkout screen's running totals.
func (s *service) Quote(ctx context.Context, owner cart.Owner, district string) (*pkgcheckout.Quote, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires a signed-in customer or guest session")
	}
	normalized := pkgcheckout.NormalizeDistrict(district)
	if !pkgcheckout.IsValidDistrict(normalized) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown district")
	}

	record, err := s.carts.FindOrCreate(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	lines := make([]pkgcheckout.Line, 0, len(record.Items))
	for i := range record.Items {
		item := &record.Items[i]
		lines = append(lines, pkgcheckout.Line{
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Quantity:        item.Quantity,
		})
	}
	quote := pkgcheckout.PriceOrder(s.rates.ShippingRates(ctx), lines, normalized)
	return &quote, nil
}

type billingFields struct {
	name     string
	phone    string
	district string
	address  string
	notes    *string
	payment  enums.PaymentMethod
}

func validateBilling(req SubmitRequest) (billingFields, error) {
	fields := billingFields{
		name:    strings.TrimSpace(req.Name),
		phone:   strings.TrimSpace(req.Phone),
		address: strings.TrimSpace(req.Address),
		payment: enums.PaymentMethodCashOnDelivery,
	}

	if fields.name == "" {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !pkgcheckout.IsValidPhone(fields.phone) {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, "phone must be a valid 11-digit Bangladeshi mobile number")
	}
	fields.district = pkgcheckout.NormalizeDistrict(req.District)
	if !pkgcheckout.IsValidDistrict(fields.district) {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, "unknown district")
	}
	if fields.address == "" {
		return fields, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if req.Notes != nil {
		if notes := strings.TrimSpace(*req.Notes); notes != "" {
			fields.notes = &notes
		}
	}
	if req.PaymentMethod != "" {
		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return fields, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
		}
		fields.payment = method
	}
	return fields, nil
}

func buildOrder(owner cart.Owner, billing billingFields, quote pkgcheckout.Quote, items []models.CartItem) *models.Order {
	order := &models.Order{
		BillingName:    billing.name,
		BillingPhone:   billing.phone,
		District:       billing.district,
		Address:        billing.address,
		Notes:          billing.notes,
		Subtotal:       quote.Subtotal,
		ShippingCharge: quote.Shipping,
		Total:          quote.Total,
		PaymentMethod:  billing.payment,
		Status:         enums.OrderStatusPending,
	}
	if owner.IsGuest() {
		token := owner.SessionToken
		order.SessionToken = &token
	} else {
		customerID := owner.CustomerID
		order.CustomerID = &customerID
	}

	order.Items = make([]models.OrderItem, 0, len(items))
	for i := range items {
		line := &items[i]
		productID := line.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       &productID,
			Name:            line.Name,
			Color:           line.Color,
			Size:            line.Size,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			Quantity:        line.Quantity,
			LineTotal:       pkgcheckout.LineTotal(line.UnitPrice, line.DiscountPercent, line.Quantity),
			ImageURL:        line.ImageURL,
		})
	}
	return order
}
