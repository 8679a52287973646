package orders

import (
	"context"
	"io"
	"testing"

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

type stubOrderRepo struct {
	orders  map[uuid.UUID]*models.Order
	updates map[string]any
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _ pagination.Params) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.CustomerID != nil && *order.CustomerID == customerID {
			rows = append(rows, *order)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubOrderRepo) ListBySession(_ context.Context, token string, _ pagination.Params) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.SessionToken != nil && *order.SessionToken == token {
			rows = append(rows, *order)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubOrderRepo) List(_ context.Context, _ pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		rows = append(rows, *order)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubOrderRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	order := s.orders[id]
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if code, ok := updates["tracking_code"].(string); ok {
		order.TrackingCode = &code
	}
	return nil
}

type stubCourier struct {
	bookings      []steadfast.CreateOrderParams
	err           error
	status        string
	statusLookups []string
}

func (s *stubCourier) CreateOrder(_ context.Context, params steadfast.CreateOrderParams) (*steadfast.Consignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.bookings = append(s.bookings, params)
	return &steadfast.Consignment{
		ConsignmentID: 42,
		Invoice:       params.Invoice,
		TrackingCode:  "TRK-42",
		Status:        "in_review",
	}, nil
}

func (s *stubCourier) DeliveryStatus(_ context.Context, trackingCode string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.statusLookups = append(s.statusLookups, trackingCode)
	if s.status == "" {
		return "pending", nil
	}
	return s.status, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "orders-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func newFixture(t *testing.T) (Service, *stubOrderRepo, *stubCourier) {
	t.Helper()
	repo := newStubOrderRepo()
	courier := &stubCourier{}
	svc, err := NewService(ServiceParams{Repo: repo, Courier: courier, Logger: testLogger(t)})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, courier
}

func seedOrder(repo *stubOrderRepo, status enums.OrderStatus) *models.Order {
	customerID := uuid.New()
	order := &models.Order{
		ID:             uuid.New(),
		CustomerID:     &customerID,
		BillingName:    "Ayesha Rahman",
		BillingPhone:   "01712345678",
		District:       "Dhaka",
		Address:        "House 7, Road 3, Dhanmondi",
		Subtotal:       decimal.NewFromInt(1800),
		ShippingCharge: decimal.NewFromInt(60),
		Total:          decimal.NewFromInt(1860),
		PaymentMethod:  enums.PaymentMethodCashOnDelivery,
		Status:         status,
	}
	repo.orders[order.ID] = order
	return order
}

func TestLifecycleTransitions(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusPending)

	dto, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if dto.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", dto.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered); err == nil {
		t.Fatal("confirmed -> delivered allowed")
	}
}

func TestShippingBooksConsignment(t *testing.T) {
	svc, repo, courier := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusConfirmed)

	dto, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}

	if len(courier.bookings) != 1 {
		t.Fatalf("bookings = %d, want 1", len(courier.bookings))
	}
	booking := courier.bookings[0]
	if booking.Invoice != order.ID.String() {
		t.Fatalf("invoice = %s, want order id", booking.Invoice)
	}
	if !booking.CODAmount.Equal(order.Total) {
		t.Fatalf("cod amount = %s, want %s", booking.CODAmount, order.Total)
	}
	if dto.TrackingCode == nil || *dto.TrackingCode != "TRK-42" {
		t.Fatalf("tracking code = %v, want TRK-42", dto.TrackingCode)
	}
	if dto.Status != enums.OrderStatusShipped {
		t.Fatalf("status = %s, want shipped", dto.Status)
	}
}

func TestCourierFailureBlocksShipping(t *testing.T) {
	svc, repo, courier := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusConfirmed)
	courier.err = pkgerrors.New(pkgerrors.CodeDependency, "courier unreachable")

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err == nil {
		t.Fatal("ship succeeded despite courier failure")
	}
	if repo.orders[order.ID].Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s, want unchanged confirmed", repo.orders[order.ID].Status)
	}
}

func TestShippingSkipsBookingWhenTracked(t *testing.T) {
	svc, repo, courier := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusConfirmed)
	code := "TRK-EXISTING"
	order.TrackingCode = &code

	dto, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if len(courier.bookings) != 0 {
		t.Fatal("re-booked an already tracked order")
	}
	if dto.TrackingCode == nil || *dto.TrackingCode != code {
		t.Fatalf("tracking code = %v, want existing preserved", dto.TrackingCode)
	}
}

func TestBookCourierRejectsPendingOrder(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusPending)

	_, err := svc.BookCourier(context.Background(), order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestCourierStatusReportsDelivery(t *testing.T) {
	svc, repo, courier := newFixture(t)
	courier.status = "delivered"
	order := seedOrder(repo, enums.OrderStatusShipped)
	code := "TRK-77"
	order.TrackingCode = &code

	dto, err := svc.CourierStatus(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("CourierStatus: %v", err)
	}
	if dto.DeliveryStatus != "delivered" {
		t.Fatalf("delivery status = %q, want delivered", dto.DeliveryStatus)
	}
	if dto.TrackingCode != code {
		t.Fatalf("tracking code = %q, want %q", dto.TrackingCode, code)
	}
	if len(courier.statusLookups) != 1 || courier.statusLookups[0] != code {
		t.Fatalf("lookups = %v, want one for %q", courier.statusLookups, code)
	}
}

func TestCourierStatusRequiresConsignment(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusConfirmed)

	_, err := svc.CourierStatus(context.Background(), order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestCancelBeforeShipping(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusPending)
	viewer := Viewer{CustomerID: *order.CustomerID}

	dto, err := svc.Cancel(context.Background(), viewer, order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if dto.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", dto.Status)
	}
}

func TestCancelAfterShippingRefused(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusShipped)
	viewer := Viewer{CustomerID: *order.CustomerID}

	_, err := svc.Cancel(context.Background(), viewer, order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestNonOwnerSeesNotFound(t *testing.T) {
	svc, repo, _ := newFixture(t)
	order := seedOrder(repo, enums.OrderStatusPending)

	_, err := svc.GetForViewer(context.Background(), Viewer{CustomerID: uuid.New()}, order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestGuestListsOwnOrders(t *testing.T) {
	svc, repo, _ := newFixture(t)
	token := "guest-token"
	order := seedOrder(repo, enums.OrderStatusPending)
	order.CustomerID = nil
	order.SessionToken = &token
	seedOrder(repo, enums.OrderStatusPending)

	page, err := svc.ListForViewer(context.Background(), Viewer{SessionToken: token}, pagination.Params{})
	if err != nil {
		t.Fatalf("ListForViewer: %v", err)
	}
	if len(page.Orders) != 1 || page.Orders[0].ID != order.ID {
		t.Fatalf("orders = %+v, want only the guest order", page.Orders)
	}
}
