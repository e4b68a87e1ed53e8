package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"admission-api/core/config"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/modules/payment/dto"
)

// PaymentClientInterface is what the booking flow depends on.
type PaymentClientInterface interface {
	CreatePaymentLink(ctx context.Context, req *dto.CreatePaymentLinkRequest) (*dto.CreatePaymentLinkResponse, *errors.AppError)
	GetPaymentLink(ctx context.Context, orderCode int64) (*dto.PaymentLinkInfo, *errors.AppError)
}

// PaymentClient talks to the external payment provider. Failures are sorted
// into four kinds so callers can tell transport trouble from provider-side
// rejection: network, non-2xx HTTP, application-level error codes, and
// responses whose shape does not match the contract.
type PaymentClient struct {
	baseURL    string
	clientID   string
	apiKey     string
	httpClient *http.Client
}

func NewPaymentClient(cfg config.PaymentConfig) *PaymentClient {
	return &PaymentClient{
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// providerEnvelope is the provider's outer response shape.
type providerEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

const providerCodeOK = "00"

func (c *PaymentClient) CreatePaymentLink(ctx context.Context, req *dto.CreatePaymentLinkRequest) (*dto.CreatePaymentLinkResponse, *errors.AppError) {
	data, appErr := c.call(ctx, http.MethodPost, "/v2/payment-requests", req, "CreatePaymentLink")
	if appErr != nil {
		return nil, appErr
	}

	var result dto.CreatePaymentLinkResponse
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Error("PaymentClient:CreatePaymentLink:Decode:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider returned an unreadable payment link", err)
	}
	if result.CheckoutURL == "" {
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider response is missing checkoutUrl", nil)
	}
	return &result, nil
}

func (c *PaymentClient) GetPaymentLink(ctx context.Context, orderCode int64) (*dto.PaymentLinkInfo, *errors.AppError) {
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	data, appErr := c.call(ctx, http.MethodGet, path, nil, "GetPaymentLink")
	if appErr != nil {
		return nil, appErr
	}

	var info dto.PaymentLinkInfo
	if err := json.Unmarshal(data, &info); err != nil {
		logger.Error("PaymentClient:GetPaymentLink:Decode:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider returned an unreadable link status", err)
	}
	if info.Status == "" {
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider response is missing status", nil)
	}
	return &info, nil
}

// call performs one provider request and peels the outer envelope. The
// returned bytes are the envelope's data field.
func (c *PaymentClient) call(ctx context.Context, method, path string, body any, op string) (json.RawMessage, *errors.AppError) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			logger.Error("PaymentClient:"+op+":Marshal:Error:", err)
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to encode payment request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		logger.Error("PaymentClient:"+op+":NewRequest:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to build payment request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("PaymentClient:"+op+":Do:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamNetwork, "Payment provider is unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("PaymentClient:"+op+":ReadBody:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamNetwork, "Failed to read payment provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("PaymentClient:"+op+":HTTPError", "status", resp.StatusCode, "body", string(raw))
		return nil, errors.NewAppError(errors.ErrUpstreamHTTP,
			fmt.Sprintf("Payment provider returned HTTP %d", resp.StatusCode), nil)
	}

	var envelope providerEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Error("PaymentClient:"+op+":DecodeEnvelope:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider returned a non-JSON body", err)
	}
	if envelope.Code == "" {
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Payment provider response is missing the result code", nil)
	}
	if envelope.Code != providerCodeOK {
		logger.Error("PaymentClient:"+op+":ProviderError", "code", envelope.Code, "desc", envelope.Desc)
		return nil, errors.NewAppError(errors.ErrUpstreamApplication,
			fmt.Sprintf("Payment provider rejected the request: %s", envelope.Desc), nil)
	}
	return envelope.Data, nil
}
