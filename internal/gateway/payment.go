package gateway

import (
	"context"
	"net/http"
)

type SendCodeRequest struct {
	ContactMethod string `json:"contactMethod"`
	PhoneNumber   string `json:"phoneNumber"`
	Email         string `json:"email"`
}

// PurchaseItem is the per-line summary submitted with a payment. Amounts are
// plain JSON numbers on the wire.
type PurchaseItem struct {
	AnnouncementID string  `json:"announcementId"`
	Quantity       int     `json:"quantity"`
	Total          float64 `json:"total"`
}

type PaymentDetails struct {
	CardNumber     string `json:"cardNumber"`
	CVC            string `json:"cvc"`
	ExpirationDate string `json:"expirationDate"`
}

type VerifyCodeRequest struct {
	Code           string         `json:"code"`
	ContactMethod  string         `json:"contactMethod"`
	PhoneNumber    string         `json:"phoneNumber"`
	Email          string         `json:"email"`
	Cart           []PurchaseItem `json:"cart"`
	TotalAmount    float64        `json:"totalAmount"`
	PaymentMethod  string         `json:"paymentMethod"`
	PaymentStatus  string         `json:"paymentStatus"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
	Timestamp      string         `json:"timestamp"`
}

type confirmPurchaseRequest struct {
	Cart []PurchaseItem `json:"cart"`
}

// SendCode asks the gateway to deliver a confirmation code and returns its acknowledgement message.
func (c *Client) SendCode(ctx context.Context, token string, req SendCodeRequest) (string, error) {
	body, err := c.do(ctx, "send_code", http.MethodPost, "/payment/send-code", token, req)
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// VerifyCode submits the code together with the payment. Any 2xx answer means
// the payment went through, whatever its body.
func (c *Client) VerifyCode(ctx context.Context, token string, req VerifyCodeRequest) (string, error) {
	body, err := c.do(ctx, "verify_code", http.MethodPost, "/payment/verify-code", token, req)
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// ConfirmPurchase calls the older finalize endpoint.
//
// Deprecated: VerifyCode finalizes a purchase; nothing in the checkout flow calls this.
func (c *Client) ConfirmPurchase(ctx context.Context, token string, items []PurchaseItem) (string, error) {
	req := confirmPurchaseRequest{Cart: items}
	body, err := c.do(ctx, "confirm_purchase", http.MethodPost, "/user/confirm-purchase", token, req)
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}
