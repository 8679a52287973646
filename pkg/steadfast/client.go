// Package steadfast wraps the Steadfast courier API used to hand parcels to
// delivery. Only the endpoints the order console needs are covered.
package steadfast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/config"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/logger"
)

var (
	errCredentialsRequired = errors.New("steadfast api key and secret key are required")
	errLoggerRequired      = errors.New("steadfast logger is required")
)

// Client exposes the courier endpoints with centralized auth, logging, and
// error mapping.
type Client struct {
	baseURL   string
	apiKey    string
	secretKey string
	http      *http.Client
	logger    *logger.Logger
}

// NewClient validates the credentials and builds the courier client.
func NewClient(cfg config.SteadfastConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if apiKey == "" || secretKey == "" {
		return nil, errCredentialsRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("steadfast base url is required")
	}

	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		secretKey: secretKey,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logg,
	}, nil
}

// CreateOrderParams is the consignment request for one parcel.
type CreateOrderParams struct {
	Invoice          string          `json:"invoice"`
	RecipientName    string          `json:"recipient_name"`
	RecipientPhone   string          `json:"recipient_phone"`
	RecipientAddress string          `json:"recipient_address"`
	CODAmount        decimal.Decimal `json:"cod_amount"`
	Note             string          `json:"note,omitempty"`
}

// Consignment is the courier's record of a booked parcel.
type Consignment struct {
	ConsignmentID int64  `json:"consignment_id"`
	Invoice       string `json:"invoice"`
	TrackingCode  string `json:"tracking_code"`
	Status        string `json:"status"`
}

type createOrderResponse struct {
	Status      int          `json:"status"`
	Message     string       `json:"message"`
	Consignment *Consignment `json:"consignment"`
}

// CreateOrder books a consignment and returns the tracking assignment.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Consignment, error) {
	c.log(ctx, "request", "create_order", map[string]any{
		"invoice":    params.Invoice,
		"cod_amount": params.CODAmount.String(),
	})

	var resp createOrderResponse
	if err := c.post(ctx, "/create_order", params, &resp); err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, err
	}
	if resp.Status != http.StatusOK || resp.Consignment == nil {
		c.log(ctx, "error", "create_order", map[string]any{"status": resp.Status, "message": resp.Message})
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("courier rejected consignment: %s", resp.Message))
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"consignment_id": resp.Consignment.ConsignmentID,
		"tracking_code":  resp.Consignment.TrackingCode,
	})
	return resp.Consignment, nil
}

type statusResponse struct {
	Status         int    `json:"status"`
	DeliveryStatus string `json:"delivery_status"`
}

// DeliveryStatus fetches the courier-side status for a tracking code.
func (c *Client) DeliveryStatus(ctx context.Context, trackingCode string) (string, error) {
	trackingCode = strings.TrimSpace(trackingCode)
	if trackingCode == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "tracking code is required")
	}

	var resp statusResponse
	if err := c.get(ctx, "/status_by_trackingcode/"+trackingCode, &resp); err != nil {
		return "", err
	}
	if resp.Status != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "courier status lookup failed")
	}
	return resp.DeliveryStatus, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal courier request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build courier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build courier request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Secret-Key", c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "courier unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return pkgerrors.New(pkgerrors.CodeDependency, "courier rejected credentials")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("courier returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "courier response malformed")
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	meta := map[string]any{"courier": "steadfast", "phase": phase, "operation": operation}
	for k, v := range fields {
		meta[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, meta), "courier call")
}
