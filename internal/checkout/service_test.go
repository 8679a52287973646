package checkout

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/internal/cart"
	"github.com/trendora/trendora-backend/internal/products"
	pkgcheckout "github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/logger"
)

type stubCartReader struct {
	record *models.CartRecord
}

func (s *stubCartReader) Find(_ context.Context, _ cart.Owner) (*models.CartRecord, error) {
	return s.record, nil
}

func (s *stubCartReader) FindOrCreate(_ context.Context, _ cart.Owner) (*models.CartRecord, error) {
	return s.record, nil
}

type stubPersister struct {
	persisted *models.Order
	cartID    uuid.UUID
	err       error
}

func (s *stubPersister) Persist(_ context.Context, order *models.Order, cartID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.persisted = order
	s.cartID = cartID
	return order, nil
}

type fixedRates struct{}

func (fixedRates) ShippingRates(_ context.Context) pkgcheckout.ShippingRates {
	return pkgcheckout.DefaultShippingRates()
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "checkout-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func seedCart() *models.CartRecord {
	productID := uuid.New()
	return &models.CartRecord{
		ID: uuid.New(),
		Items: []models.CartItem{{
			ID:              uuid.New(),
			ProductID:       productID,
			Name:            "Summer Dress",
			Slug:            "summer-dress",
			UnitPrice:       decimal.NewFromInt(1000),
			DiscountPercent: decimal.NewFromInt(10),
			Quantity:        2,
		}},
	}
}

func newFixture(t *testing.T, record *models.CartRecord) (Service, *stubPersister) {
	t.Helper()
	persister := &stubPersister{}
	svc, err := NewService(ServiceParams{
		Carts:  &stubCartReader{record: record},
		Store:  persister,
		Rates:  fixedRates{},
		Logger: testLogger(t),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, persister
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:     "Ayesha Rahman",
		Phone:    "01712345678",
		District: "Dhaka",
		Address:  "House 7, Road 3, Dhanmondi",
	}
}

func TestSubmitPricesDhakaFixture(t *testing.T) {
	record := seedCart()
	svc, persister := newFixture(t, record)

	dto, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !dto.Subtotal.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("subtotal = %s, want 1800", dto.Subtotal)
	}
	if !dto.ShippingCharge.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("shipping = %s, want 60", dto.ShippingCharge)
	}
	if !dto.Total.Equal(decimal.NewFromInt(1860)) {
		t.Fatalf("total = %s, want 1860", dto.Total)
	}
	if persister.cartID != record.ID {
		t.Fatalf("cleared cart = %s, want %s", persister.cartID, record.ID)
	}
	if dto.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", dto.Status)
	}
	if dto.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		t.Fatalf("payment = %s, want cash on delivery", dto.PaymentMethod)
	}
}

func TestSubmitOutsideDhakaShipping(t *testing.T) {
	svc, _ := newFixture(t, seedCart())

	req := validRequest()
	req.District = "Chattogram"
	dto, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !dto.ShippingCharge.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("shipping = %s, want 120", dto.ShippingCharge)
	}
	if !dto.Total.Equal(decimal.NewFromInt(1920)) {
		t.Fatalf("total = %s, want 1920", dto.Total)
	}
}

func TestSubmitRejectsShortPhoneBeforePersistence(t *testing.T) {
	svc, persister := newFixture(t, seedCart())

	req := validRequest()
	req.Phone = "0171234567"
	_, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), req)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if persister.persisted != nil {
		t.Fatal("order persisted despite invalid phone")
	}
}

func TestSubmitRejectsUnknownDistrict(t *testing.T) {
	svc, persister := newFixture(t, seedCart())

	req := validRequest()
	req.District = "Atlantis"
	_, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), req)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if persister.persisted != nil {
		t.Fatal("order persisted despite unknown district")
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	empty := &models.CartRecord{ID: uuid.New(), Items: []models.CartItem{}}
	svc, persister := newFixture(t, empty)

	_, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), validRequest())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if persister.persisted != nil {
		t.Fatal("order persisted from an empty cart")
	}
}

func TestSubmitGuestOrderKeepsSessionToken(t *testing.T) {
	svc, persister := newFixture(t, seedCart())

	_, err := svc.Submit(context.Background(), cart.GuestOwner("guest-token"), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	order := persister.persisted
	if order.CustomerID != nil {
		t.Fatal("guest order carries a customer id")
	}
	if order.SessionToken == nil || *order.SessionToken != "guest-token" {
		t.Fatalf("session token = %v, want guest-token", order.SessionToken)
	}
}

func TestSubmitOutOfStock(t *testing.T) {
	record := seedCart()
	svc, persister := newFixture(t, record)
	persister.err = products.ErrInsufficientStock

	_, err := svc.Submit(context.Background(), cart.CustomerOwner(uuid.New()), validRequest())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict", err)
	}
}

func TestQuoteDoesNotPersist(t *testing.T) {
	svc, persister := newFixture(t, seedCart())

	quote, err := svc.Quote(context.Background(), cart.CustomerOwner(uuid.New()), "dhaka")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !quote.Total.Equal(decimal.NewFromInt(1860)) {
		t.Fatalf("total = %s, want 1860", quote.Total)
	}
	if persister.persisted != nil {
		t.Fatal("quote persisted an order")
	}
}
