package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fashion-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:    endpoint,
		PartnerCode: "MOMO",
		AccessKey:   "F8BBA842ECF85",
		SecretKey:   "K951B6PE1waDMi640xX08PD3vg6EkVlz",
		RedirectURL: "https://shop.example/",
		IPNURL:      "https://api.example",
		RequestType: "payWithMethod",
		Lang:        "vi",
		Timeout:     2 * time.Second,
	}
}

func TestCanonicalString_FieldOrder(t *testing.T) {
	raw := CanonicalString(Fields{
		AccessKey:   "ak",
		Amount:      "15250",
		ExtraData:   "",
		IPNURL:      "https://api.example/order/1/payment-notification",
		OrderID:     "1",
		OrderInfo:   "pay",
		PartnerCode: "MOMO",
		RedirectURL: "https://shop.example/order/1",
		RequestID:   "r1",
		RequestType: "payWithMethod",
	})

	assert.Equal(t,
		"accessKey=ak&amount=15250&extraData=&ipnUrl=https://api.example/order/1/payment-notification"+
			"&orderId=1&orderInfo=pay&partnerCode=MOMO&redirectUrl=https://shop.example/order/1"+
			"&requestId=r1&requestType=payWithMethod",
		raw)
}

func TestSign(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		Sign("key", "The quick brown fox jumps over the lazy dog"))
}

func TestConfig_CallbackURLs(t *testing.T) {
	cfg := testConfig("")

	assert.Equal(t, "https://shop.example/order/abc", cfg.RedirectFor("abc"))
	assert.Equal(t, "https://api.example/order/abc/payment-notification", cfg.IPNFor("abc"))
}

func TestClient_CreatePayment_Success(t *testing.T) {
	var received createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultCode": 0,
			"message":    "Successful.",
			"payUrl":     "https://pay.example/checkout/xyz",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	client := NewClient(cfg, zerolog.Nop())

	result, err := client.CreatePayment(context.Background(), Request{
		OrderID:   "order-1",
		RequestID: "req-1",
		Amount:    decimal.NewFromInt(15250),
		OrderInfo: "Payment for order order-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/checkout/xyz", result.PayURL)
	assert.Equal(t, int64(15250), received.Amount)
	assert.Equal(t, "req-1", received.RequestID)
	assert.Equal(t, "https://shop.example/order/order-1", received.RedirectURL)
	assert.Equal(t, "https://api.example/order/order-1/payment-notification", received.IPNURL)

	want := Sign(cfg.SecretKey, CanonicalString(Fields{
		AccessKey:   cfg.AccessKey,
		Amount:      "15250",
		IPNURL:      received.IPNURL,
		OrderID:     "order-1",
		OrderInfo:   "Payment for order order-1",
		PartnerCode: "MOMO",
		RedirectURL: received.RedirectURL,
		RequestID:   "req-1",
		RequestType: "payWithMethod",
	}))
	assert.Equal(t, want, received.Signature)
}

func TestClient_CreatePayment_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		httpStatus int
		resultCode int
		wantStatus int
	}{
		{name: "Non-zero result code", httpStatus: http.StatusOK, resultCode: 1001, wantStatus: http.StatusBadGateway},
		{name: "Bad request", httpStatus: http.StatusBadRequest, resultCode: 20, wantStatus: http.StatusBadGateway},
		{name: "Gateway outage", httpStatus: http.StatusServiceUnavailable, resultCode: 99, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.httpStatus)
				_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": tt.resultCode, "message": "Transaction denied"})
			}))
			defer server.Close()

			_, err := NewClient(testConfig(server.URL), zerolog.Nop()).CreatePayment(context.Background(), Request{
				OrderID: "order-1", RequestID: "req-1", Amount: decimal.NewFromInt(100),
			})

			var upstream *model.UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, tt.wantStatus, upstream.StatusCode)
			assert.Equal(t, "Transaction denied", upstream.Message)
			assert.Equal(t, 1, calls, "gateway calls are never retried")
		})
	}
}

func TestClient_CreatePayment_Unreachable(t *testing.T) {
	_, err := NewClient(testConfig("http://127.0.0.1:1"), zerolog.Nop()).CreatePayment(context.Background(), Request{
		OrderID: "order-1", RequestID: "req-1", Amount: decimal.NewFromInt(100),
	})

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, ServiceName, upstream.Service)
}

func TestClient_CreatePayment_FractionalAmount(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	for _, amount := range []string{"15250.50", "0", "-100"} {
		t.Run(amount, func(t *testing.T) {
			_, err := NewClient(testConfig(server.URL), zerolog.Nop()).CreatePayment(context.Background(), Request{
				OrderID: "order-1", RequestID: "req-1", Amount: decimal.RequireFromString(amount),
			})

			require.Error(t, err)
			assert.Contains(t, err.Error(), "not a positive whole amount")
		})
	}
	assert.Zero(t, calls)
}
