package dto

// CreatePaymentLinkRequest is the payload sent to the payment provider.
type CreatePaymentLinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
}

// CreatePaymentLinkResponse is the subset of the provider response the
// booking flow needs.
type CreatePaymentLinkResponse struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
	OrderCode     int64  `json:"orderCode"`
}

// PaymentLinkInfo is the provider-side state of one payment link.
type PaymentLinkInfo struct {
	OrderCode int64  `json:"orderCode"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// Provider payment link statuses.
const (
	LinkStatusPending   = "PENDING"
	LinkStatusPaid      = "PAID"
	LinkStatusCancelled = "CANCELLED"
	LinkStatusExpired   = "EXPIRED"
)
