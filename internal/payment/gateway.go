// Package payment initiates online payments with the MoMo-style gateway.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ServiceName identifies the gateway in upstream errors.
const ServiceName = "payment"

// Config is the merchant account and callback configuration.
type Config struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	IPNURL      string
	RequestType string
	Lang        string
	Timeout     time.Duration
}

// RedirectFor is where the buyer lands after paying for orderID.
func (c Config) RedirectFor(orderID string) string {
	return strings.TrimRight(c.RedirectURL, "/") + "/order/" + orderID
}

// IPNFor is where the gateway reports the payment result for orderID.
func (c Config) IPNFor(orderID string) string {
	return strings.TrimRight(c.IPNURL, "/") + "/order/" + orderID + "/payment-notification"
}

// Request describes one payment to initiate.
type Request struct {
	OrderID   string
	RequestID string
	Amount    decimal.Decimal
	OrderInfo string
}

// Result is the gateway's answer to a successful initiation.
type Result struct {
	PayURL string
}

// Gateway initiates payments.
type Gateway interface {
	CreatePayment(ctx context.Context, req Request) (Result, error)
}

// Fields are the signed parameters of a payment request.
type Fields struct {
	AccessKey   string
	Amount      string
	ExtraData   string
	IPNURL      string
	OrderID     string
	OrderInfo   string
	PartnerCode string
	RedirectURL string
	RequestID   string
	RequestType string
}

// CanonicalString renders the fields in the fixed order the gateway signs.
func CanonicalString(f Fields) string {
	return "accessKey=" + f.AccessKey +
		"&amount=" + f.Amount +
		"&extraData=" + f.ExtraData +
		"&ipnUrl=" + f.IPNURL +
		"&orderId=" + f.OrderID +
		"&orderInfo=" + f.OrderInfo +
		"&partnerCode=" + f.PartnerCode +
		"&redirectUrl=" + f.RedirectURL +
		"&requestId=" + f.RequestID +
		"&requestType=" + f.RequestType
}

// Sign returns the hex HMAC-SHA256 of raw under secret.
func Sign(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client. Calls are never retried.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "payment").Logger(),
	}
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	RequestType string `json:"requestType"`
	AutoCapture bool   `json:"autoCapture"`
	ExtraData   string `json:"extraData"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// buildRequest assembles and signs the body for req. req.Amount is whole.
func (c *Client) buildRequest(req Request) createRequest {
	amount := req.Amount.IntPart()
	fields := Fields{
		AccessKey:   c.cfg.AccessKey,
		Amount:      strconv.FormatInt(amount, 10),
		IPNURL:      c.cfg.IPNFor(req.OrderID),
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		PartnerCode: c.cfg.PartnerCode,
		RedirectURL: c.cfg.RedirectFor(req.OrderID),
		RequestID:   req.RequestID,
		RequestType: c.cfg.RequestType,
	}

	return createRequest{
		PartnerCode: fields.PartnerCode,
		PartnerName: "FashionShop",
		StoreID:     "FashionShop",
		RequestID:   fields.RequestID,
		Amount:      amount,
		OrderID:     fields.OrderID,
		OrderInfo:   fields.OrderInfo,
		RedirectURL: fields.RedirectURL,
		IPNURL:      fields.IPNURL,
		Lang:        c.cfg.Lang,
		RequestType: fields.RequestType,
		AutoCapture: true,
		ExtraData:   fields.ExtraData,
		Signature:   Sign(c.cfg.SecretKey, CanonicalString(fields)),
	}
}

// CreatePayment asks the gateway for a pay URL.
func (c *Client) CreatePayment(ctx context.Context, req Request) (Result, error) {
	if !req.Amount.IsPositive() || !req.Amount.IsInteger() {
		return Result{}, fmt.Errorf("payment amount %s is not a positive whole amount", req.Amount)
	}

	raw, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode payment request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/create"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", req.OrderID).Msg("payment gateway request failed")
		status := http.StatusBadGateway
		var t interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &t) && t.Timeout()) {
			status = http.StatusGatewayTimeout
		}
		return Result{}, model.NewUpstreamError(ServiceName, status, "payment gateway is unavailable")
	}
	defer resp.Body.Close()

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, model.NewUpstreamError(ServiceName, http.StatusBadGateway, "payment gateway returned an unreadable response")
	}

	if resp.StatusCode >= 400 || out.ResultCode != 0 {
		status := http.StatusBadGateway
		if resp.StatusCode >= 500 {
			status = resp.StatusCode
		}
		c.logger.Warn().
			Str("order_id", req.OrderID).
			Int("http_status", resp.StatusCode).
			Int("result_code", out.ResultCode).
			Str("message", out.Message).
			Msg("payment gateway rejected request")
		return Result{}, model.NewUpstreamError(ServiceName, status, out.Message)
	}

	c.logger.Info().Str("order_id", req.OrderID).Str("request_id", req.RequestID).Msg("payment initiated")

	return Result{PayURL: out.PayURL}, nil
}
