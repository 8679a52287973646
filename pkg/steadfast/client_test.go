package steadfast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendora/trendora-backend/pkg/config"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(config.SteadfastConfig{
		BaseURL:   baseURL,
		APIKey:    "test-api-key",
		SecretKey: "test-secret-key",
		Timeout:   5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	_, err := NewClient(config.SteadfastConfig{BaseURL: "https://example.com"}, logg)
	assert.ErrorIs(t, err, errCredentialsRequired)

	_, err = NewClient(config.SteadfastConfig{BaseURL: "https://example.com", APIKey: "k", SecretKey: "s"}, nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create_order", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "test-secret-key", r.Header.Get("Secret-Key"))

		var params CreateOrderParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "TRD-1001", params.Invoice)
		assert.Equal(t, "01712345678", params.RecipientPhone)

		json.NewEncoder(w).Encode(createOrderResponse{
			Status: http.StatusOK,
			Consignment: &Consignment{
				ConsignmentID: 99001,
				Invoice:       params.Invoice,
				TrackingCode:  "SA99001BD",
				Status:        "in_review",
			},
		})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	consignment, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Invoice:          "TRD-1001",
		RecipientName:    "Rahim Uddin",
		RecipientPhone:   "01712345678",
		RecipientAddress: "House 12, Road 5, Dhanmondi, Dhaka",
		CODAmount:        decimal.NewFromInt(1860),
	})
	require.NoError(t, err)
	assert.Equal(t, "SA99001BD", consignment.TrackingCode)
	assert.EqualValues(t, 99001, consignment.ConsignmentID)
}

func TestCreateOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createOrderResponse{
			Status:  http.StatusBadRequest,
			Message: "invalid phone number",
		})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Invoice: "TRD-1002"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestCreateOrderUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Invoice: "TRD-1003"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestDeliveryStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status_by_trackingcode/SA99001BD", r.URL.Path)
		json.NewEncoder(w).Encode(statusResponse{Status: http.StatusOK, DeliveryStatus: "delivered"})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	status, err := client.DeliveryStatus(context.Background(), "SA99001BD")
	require.NoError(t, err)
	assert.Equal(t, "delivered", status)

	_, err = client.DeliveryStatus(context.Background(), "  ")
	require.Error(t, err)
}
