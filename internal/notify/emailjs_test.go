package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailJSClient_Defaults(t *testing.T) {
	c := NewEmailJSClient("", "svc", "tpl", "pub", "")
	assert.Equal(t, "https://api.emailjs.com", c.BaseURL)
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, defaultEmailTimeout, c.HTTPClient.Timeout)
}

func TestEmailJSSend_Success(t *testing.T) {
	var got emailJSRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewEmailJSClient(server.URL, "svc", "tpl", "pub", "priv")
	err := c.Send(context.Background(), Email{
		ToName:             "Customer",
		FromName:           "Touskié-Byou3",
		ToEmail:            "u@x.com",
		TransactionDetails: "Total amount: 25, Payment Method: Credit Card, Status: Success",
	})
	require.NoError(t, err)

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "priv", got.AccessToken)
	assert.Equal(t, map[string]string{
		"to_name":             "Customer",
		"from_name":           "Touskié-Byou3",
		"to_email":            "u@x.com",
		"transaction_details": "Total amount: 25, Payment Method: Credit Card, Status: Success",
	}, got.TemplateParams)
}

func TestEmailJSSend_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template ID is invalid"))
	}))
	defer server.Close()

	c := NewEmailJSClient(server.URL, "svc", "tpl", "pub", "")
	err := c.Send(context.Background(), Email{ToEmail: "u@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}

func TestEmailJSSend_NotConfigured(t *testing.T) {
	c := NewEmailJSClient("", "", "tpl", "pub", "")
	assert.ErrorIs(t, c.Send(context.Background(), Email{}), ErrMailerNotConfigured)
}
