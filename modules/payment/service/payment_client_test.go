package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"admission-api/core/config"
	"admission-api/core/errors"
	"admission-api/modules/payment/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PaymentClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPaymentClient(config.PaymentConfig{
		BaseURL:  server.URL,
		ClientID: "client-id",
		APIKey:   "api-key",
	})
}

func TestCreatePaymentLink_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/payment-requests", r.URL.Path)
		assert.Equal(t, "client-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "api-key", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "00",
			"desc": "success",
			"data": {"checkoutUrl": "https://pay.example.com/abc", "paymentLinkId": "abc", "orderCode": 4217}
		}`))
	})

	result, appErr := client.CreatePaymentLink(context.Background(), &dto.CreatePaymentLinkRequest{
		OrderCode:   4217,
		Amount:      200000,
		Description: "Tư vấn tuyển sinh",
	})

	require.Nil(t, appErr)
	assert.Equal(t, "https://pay.example.com/abc", result.CheckoutURL)
	assert.Equal(t, int64(4217), result.OrderCode)
}

func TestCreatePaymentLink_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewPaymentClient(config.PaymentConfig{BaseURL: server.URL})
	_, appErr := client.CreatePaymentLink(context.Background(), &dto.CreatePaymentLinkRequest{OrderCode: 1})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpstreamNetwork, appErr.Code)
}

func TestCreatePaymentLink_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server blew up", http.StatusBadGateway)
	})

	_, appErr := client.CreatePaymentLink(context.Background(), &dto.CreatePaymentLinkRequest{OrderCode: 1})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpstreamHTTP, appErr.Code)
}

func TestCreatePaymentLink_ApplicationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "231", "desc": "duplicate order code", "data": null}`))
	})

	_, appErr := client.CreatePaymentLink(context.Background(), &dto.CreatePaymentLinkRequest{OrderCode: 1})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpstreamApplication, appErr.Code)
	assert.Contains(t, appErr.Message, "duplicate order code")
}

func TestCreatePaymentLink_DataShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway timeout</html>`},
		{"missing code", `{"data": {}}`},
		{"missing checkoutUrl", `{"code": "00", "data": {"orderCode": 1}}`},
		{"data wrong type", `{"code": "00", "data": "oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, appErr := client.CreatePaymentLink(context.Background(), &dto.CreatePaymentLinkRequest{OrderCode: 1})

			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrUpstreamDataShape, appErr.Code)
		})
	}
}

func TestGetPaymentLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests/4217", r.URL.Path)
		w.Write([]byte(`{"code": "00", "data": {"orderCode": 4217, "status": "PAID", "amount": 200000}}`))
	})

	info, appErr := client.GetPaymentLink(context.Background(), 4217)

	require.Nil(t, appErr)
	assert.Equal(t, dto.LinkStatusPaid, info.Status)
	assert.Equal(t, int64(200000), info.Amount)
}

func TestGetPaymentLink_MissingStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "00", "data": {"orderCode": 4217}}`))
	})

	_, appErr := client.GetPaymentLink(context.Background(), 4217)

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpstreamDataShape, appErr.Code)
}
