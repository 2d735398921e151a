package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Client is the HTTP implementation of Carrier.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

var _ Carrier = (*Client)(nil)

// NewClient creates a carrier client. Calls are never retried.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "shipping").Logger(),
	}
}

// envelope is the carrier's response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode carrier request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build carrier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", c.cfg.Token)
	req.Header.Set("ShopId", strconv.Itoa(c.cfg.ShopID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("carrier request failed")
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		return model.NewUpstreamError(ServiceName, status, "shipping provider is unavailable")
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("code", env.Code).
		Dur("duration", time.Since(start)).
		Msg("carrier request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decodeErr == nil && env.Code != http.StatusOK) {
		status := resp.StatusCode
		if status < 400 {
			status = env.Code
		}
		c.logger.Warn().Str("path", path).Int("status", status).Str("message", env.Message).Msg("carrier rejected request")
		return model.NewUpstreamError(ServiceName, status, env.Message)
	}
	if decodeErr != nil {
		return model.NewUpstreamError(ServiceName, http.StatusBadGateway, "shipping provider returned an unreadable response")
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return model.NewUpstreamError(ServiceName, http.StatusBadGateway, "shipping provider returned an unreadable response")
		}
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func (c *Client) Provinces(ctx context.Context) ([]Province, error) {
	var out []Province
	if err := c.do(ctx, http.MethodGet, "/master-data/province", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Districts(ctx context.Context, provinceID int) ([]District, error) {
	var out []District
	q := url.Values{"province_id": {strconv.Itoa(provinceID)}}
	if err := c.do(ctx, http.MethodGet, "/master-data/district", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Wards(ctx context.Context, districtID int) ([]Ward, error) {
	var out []Ward
	q := url.Values{"district_id": {strconv.Itoa(districtID)}}
	if err := c.do(ctx, http.MethodGet, "/master-data/ward", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CalculateFee(ctx context.Context, req QuoteRequest) (decimal.Decimal, error) {
	body := map[string]any{
		"shop_id":          c.cfg.ShopID,
		"service_id":       c.cfg.ServiceID,
		"from_district_id": c.cfg.FromDistrictID,
		"to_district_id":   req.ToDistrictID,
		"to_ward_code":     req.ToWardCode,
		"weight":           req.Package.Weight,
		"length":           req.Package.Length,
		"width":            req.Package.Width,
		"height":           req.Package.Height,
		"insurance_value":  req.InsuranceValue.IntPart(),
	}

	var out struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/shipping-order/fee", nil, body, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (c *Client) EstimateLeadTime(ctx context.Context, req QuoteRequest) (time.Time, error) {
	body := map[string]any{
		"shop_id":          c.cfg.ShopID,
		"service_id":       c.cfg.ServiceID,
		"from_district_id": c.cfg.FromDistrictID,
		"to_district_id":   req.ToDistrictID,
		"to_ward_code":     req.ToWardCode,
	}

	var out struct {
		LeadTime int64 `json:"leadtime"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/shipping-order/leadtime", nil, body, &out); err != nil {
		return time.Time{}, err
	}
	return time.Unix(out.LeadTime, 0).UTC(), nil
}

func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest) (model.Shipment, error) {
	d := req.Delivery
	body := map[string]any{
		"shop_id":           c.cfg.ShopID,
		"payment_type_id":   1,
		"note":              d.Note,
		"required_note":     d.RequiredNote,
		"client_order_code": req.ClientOrderCode,
		"to_name":           d.ToName,
		"to_phone":          d.ToPhone,
		"to_address":        d.ToAddress,
		"to_ward_name":      d.ToWardName,
		"to_district_name":  d.ToDistrictName,
		"to_province_name":  d.ToProvinceName,
		"cod_amount":        req.CODAmount.IntPart(),
		"weight":            d.Package.Weight,
		"length":            d.Package.Length,
		"width":             d.Package.Width,
		"height":            d.Package.Height,
		"insurance_value":   d.InsuranceValue.IntPart(),
		"service_id":        d.ServiceID,
		"items":             req.Items,
	}

	var out struct {
		OrderCode            string          `json:"order_code"`
		TotalFee             decimal.Decimal `json:"total_fee"`
		ExpectedDeliveryTime *time.Time      `json:"expected_delivery_time"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/shipping-order/create", nil, body, &out); err != nil {
		return model.Shipment{}, err
	}
	if out.OrderCode == "" {
		return model.Shipment{}, model.NewUpstreamError(ServiceName, http.StatusBadGateway, "shipping provider did not return an order code")
	}

	c.logger.Info().Str("delivery_code", out.OrderCode).Str("client_order_code", req.ClientOrderCode).Msg("shipment created")

	return model.Shipment{
		DeliveryCode: out.OrderCode,
		Fee:          out.TotalFee,
		ExpectedAt:   out.ExpectedDeliveryTime,
	}, nil
}

func (c *Client) PrintURL(ctx context.Context, deliveryCode string, size PageSize) (string, error) {
	body := map[string]any{"order_codes": []string{deliveryCode}}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/a5/gen-token", nil, body, &out); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/a5/public-api/print%s?token=%s",
		strings.TrimRight(c.cfg.PrintURL, "/"), size, url.QueryEscape(out.Token)), nil
}
