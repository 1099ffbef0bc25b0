package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultEmailTimeout = 15 * time.Second

// Email is one templated confirmation message.
type Email struct {
	ToName             string
	FromName           string
	ToEmail            string
	TransactionDetails string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// EmailJSClient sends template emails through the EmailJS REST API.
// See https://www.emailjs.com/docs/rest-api/send/.
type EmailJSClient struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	// PrivateKey is sent as accessToken when set.
	PrivateKey string
	HTTPClient *http.Client
}

// NewEmailJSClient returns a client for the given service and template. baseURL may be empty.
func NewEmailJSClient(baseURL, serviceID, templateID, publicKey, privateKey string) *EmailJSClient {
	if baseURL == "" {
		baseURL = "https://api.emailjs.com"
	}
	return &EmailJSClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		HTTPClient: &http.Client{
			Timeout:   defaultEmailTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts the email. Does not log the recipient address.
func (c *EmailJSClient) Send(ctx context.Context, email Email) error {
	if c.ServiceID == "" || c.TemplateID == "" || c.PublicKey == "" {
		return ErrMailerNotConfigured
	}
	body := emailJSRequest{
		ServiceID:   c.ServiceID,
		TemplateID:  c.TemplateID,
		UserID:      c.PublicKey,
		AccessToken: c.PrivateKey,
		TemplateParams: map[string]string{
			"to_name":             email.ToName,
			"from_name":           email.FromName,
			"to_email":            email.ToEmail,
			"transaction_details": email.TransactionDetails,
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1.0/email/send", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("emailjs: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
