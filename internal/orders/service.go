package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/logger"
	"github.com/trendora/trendora-backend/pkg/pagination"
	"github.com/trendora/trendora-backend/pkg/steadfast"
)

// Viewer identifies who is asking for an order: a signed-in customer or a
// guest session token.
type Viewer struct {
	CustomerID   uuid.UUID
	SessionToken string
}

// Service exposes order listing and lifecycle operations.
type Service interface {
	ListForViewer(ctx context.Context, viewer Viewer, params pagination.Params) (*ListDTO, error)
	GetForViewer(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	AdminList(ctx context.Context, params pagination.Params, filters ListFilters) (*ListDTO, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	BookCourier(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	CourierStatus(ctx context.Context, orderID uuid.UUID) (*CourierStatusDTO, error)
}

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	ListBySession(ctx context.Context, sessionToken string, params pagination.Params) ([]models.Order, int64, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type courierClient interface {
	CreateOrder(ctx context.Context, params steadfast.CreateOrderParams) (*steadfast.Consignment, error)
	DeliveryStatus(ctx context.Context, trackingCode string) (string, error)
}

// ServiceParams groups dependencies for the order service. Courier is
// optional; without it, shipping proceeds with no consignment booking.
type ServiceParams struct {
	Repo    orderRepository
	Courier courierClient
	Logger  *logger.Logger
}

type service struct {
	repo    orderRepository
	courier courierClient
	logg    *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repo, courier: params.Courier, logg: params.Logger}, nil
}

func (s *service) ListForViewer(ctx context.Context, viewer Viewer, params pagination.Params) (*ListDTO, error) {
	params = pagination.Normalize(params)

	var (
		rows  []models.Order
		total int64
		err   error
	)
	switch {
	case viewer.CustomerID != uuid.Nil:
		rows, total, err = s.repo.ListByCustomer(ctx, viewer.CustomerID, params)
	case strings.TrimSpace(viewer.SessionToken) != "":
		rows, total, err = s.repo.ListBySession(ctx, viewer.SessionToken, params)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order viewer is required")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toListDTO(rows, params, total), nil
}

func (s *service) GetForViewer(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewerOwns(viewer, order) {
		// Hide existence from non-owners.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(order), nil
}

// Cancel lets the order's owner abandon it before it ships.
func (s *service) Cancel(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewerOwns(viewer, order) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}
	return s.applyStatus(ctx, order, enums.OrderStatusCancelled, nil)
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters ListFilters) (*ListDTO, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toListDTO(rows, params, total), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// UpdateStatus moves an order through its lifecycle and returns the
// authoritative post-transition row so optimistic clients reconcile from
// the response. Moving to shipped books a courier consignment first when a
// courier client is configured and no tracking code exists yet.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	var extra map[string]any
	if next == enums.OrderStatusShipped && order.TrackingCode == nil && s.courier != nil {
		consignment, err := s.bookConsignment(ctx, order)
		if err != nil {
			return nil, err
		}
		extra = map[string]any{"tracking_code": consignment.TrackingCode}
	}
	return s.applyStatus(ctx, order, next, extra)
}

// BookCourier books a consignment without changing the order status, for
// admins who arrange the courier ahead of marking the order shipped.
func (s *service) BookCourier(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	if s.courier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courier is not configured")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TrackingCode != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a consignment")
	}
	switch order.Status {
	case enums.OrderStatusConfirmed, enums.OrderStatusShipped:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be booked", order.Status))
	}

	consignment, err := s.bookConsignment(ctx, order)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"tracking_code": consignment.TrackingCode}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store tracking code")
	}
	return s.AdminGet(ctx, order.ID)
}

// CourierStatus looks up the courier-side delivery status for a booked
// order. It requires a configured courier and an existing tracking code.
func (s *service) CourierStatus(ctx context.Context, orderID uuid.UUID) (*CourierStatusDTO, error) {
	if s.courier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courier is not configured")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TrackingCode == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no consignment")
	}

	status, err := s.courier.DeliveryStatus(ctx, *order.TrackingCode)
	if err != nil {
		return nil, err
	}
	return &CourierStatusDTO{
		OrderID:        order.ID,
		TrackingCode:   *order.TrackingCode,
		DeliveryStatus: status,
	}, nil
}

func (s *service) bookConsignment(ctx context.Context, order *models.Order) (*steadfast.Consignment, error) {
	codAmount := decimal.Zero
	if order.PaymentMethod == enums.PaymentMethodCashOnDelivery {
		codAmount = order.Total
	}

	note := ""
	if order.Notes != nil {
		note = *order.Notes
	}

	consignment, err := s.courier.CreateOrder(ctx, steadfast.CreateOrderParams{
		Invoice:          order.ID.String(),
		RecipientName:    order.BillingName,
		RecipientPhone:   order.BillingPhone,
		RecipientAddress: fmt.Sprintf("%s, %s", order.Address, order.District),
		CODAmount:        codAmount,
		Note:             note,
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":      order.ID.String(),
		"tracking_code": consignment.TrackingCode,
	}), "courier consignment booked")
	return consignment, nil
}

func (s *service) applyStatus(ctx context.Context, order *models.Order, next enums.OrderStatus, extra map[string]any) (*OrderDTO, error) {
	updates := map[string]any{"status": next}
	for column, value := range extra {
		updates[column] = value
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return s.AdminGet(ctx, order.ID)
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func viewerOwns(viewer Viewer, order *models.Order) bool {
	if viewer.CustomerID != uuid.Nil {
		return order.CustomerID != nil && *order.CustomerID == viewer.CustomerID
	}
	if token := strings.TrimSpace(viewer.SessionToken); token != "" {
		return order.SessionToken != nil && *order.SessionToken == token
	}
	return false
}

func toListDTO(rows []models.Order, params pagination.Params, total int64) *ListDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return &ListDTO{Orders: out, Pagination: pagination.NewPage(params, total)}
}
