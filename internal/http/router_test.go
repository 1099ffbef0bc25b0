package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/checkout"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

const testSecret = "bff-secret"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	gw      *GatewayMock
}

func newTestAPI(t *testing.T, items ...seed) *testAPI {
	t.Helper()
	gw := &GatewayMock{}
	for _, i := range items {
		gw.items = append(gw.items, item(i.id, i.price, i.quantity))
	}
	reg := prometheus.NewRegistry()
	workspaces := NewWorkspaces(WorkspaceDeps{
		Credentials: identity.NewMemoryStore(),
		Decoder:     identity.NewDecoder(testSecret),
		Gateway:     gw,
		Notifier:    NotifierMock{},
	})
	handler := NewRouter(RouterConfig{
		Workspaces:     workspaces,
		Metrics:        metrics.New(reg, "bff"),
		MetricsHandler: metrics.Handler(reg),
		NotifyWait:     time.Second,
	})
	return &testAPI{t: t, handler: handler, gw: gw}
}

type seed struct {
	id       string
	price    int64
	quantity int
}

func (a *testAPI) do(method, path, clientID string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if clientID != "" {
		req.Header.Set(HeaderClientID, clientID)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(clientID string) {
	a.t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Email:            "u@x.com",
	}).SignedString([]byte(testSecret))
	require.NoError(a.t, err)

	rec := a.do(http.MethodPost, "/api/v1/session", clientID, LoginRequestDTO{Token: token})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingClientID(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_client_id", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestCart_RequiresLogin(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 2})
	rec := api.do(http.MethodGet, "/api/v1/cart", "c1", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login_required", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestSession_LoginGetLogout(t *testing.T) {
	api := newTestAPI(t)
	api.login("c1")

	rec := api.do(http.MethodGet, "/api/v1/session", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u@x.com", decodeJSON[identity.Identity](t, rec).Email)

	// other clients are not signed in
	rec = api.do(http.MethodGet, "/api/v1/session", "c2", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/session", "c1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/session", "c1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_LoginRejectsBadToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/v1/session", "c1", LoginRequestDTO{Token: "garbage"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_credential", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestCart_Flow(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 2}, seed{"b", 5, 1})
	api.login("c1")

	rec := api.do(http.MethodGet, "/api/v1/cart", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeJSON[CartResponseDTO](t, rec)
	assert.Equal(t, "25", cart.Total.String())
	assert.Equal(t, "Untitled", cart.Items[0].Title)
	assert.Equal(t, "/uploads/default-image.jpg", cart.Items[0].PicURL)

	rec = api.do(http.MethodDelete, "/api/v1/cart/items/b", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20", decodeJSON[CartResponseDTO](t, rec).Total.String())

	rec = api.do(http.MethodPost, "/api/v1/cart/items/a/increment", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", decodeJSON[CartResponseDTO](t, rec).Total.String())

	rec = api.do(http.MethodPatch, "/api/v1/cart/items/a", "c1", UpdateQuantityRequestDTO{Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/cart/items/a/decrement", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeJSON[CartResponseDTO](t, rec).Items[0].Quantity)

	rec = api.do(http.MethodPost, "/api/v1/cart/clear", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[CartResponseDTO](t, rec).Items)
}

func TestCart_InvalidQuantity(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 2})
	api.login("c1")

	rec := api.do(http.MethodPatch, "/api/v1/cart/items/a", "c1", UpdateQuantityRequestDTO{Quantity: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCart_LoadFailureIsBadGateway(t *testing.T) {
	api := newTestAPI(t)
	api.gw.fetchErr = &gateway.Error{Op: "fetch_cart", Kind: gateway.KindNoResponse}
	api.login("c1")

	rec := api.do(http.MethodGet, "/api/v1/cart", "c1", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "load_failure", resp.Code)
	assert.Equal(t, "Failed to load cart.", resp.Error)
}

func TestCheckout_Flow(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 2})
	api.login("c1")

	rec := api.do(http.MethodPost, "/api/v1/checkout", "c1", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decodeJSON[checkout.View](t, rec)
	base := "/api/v1/checkout/" + v.ID.String()

	rec = api.do(http.MethodPost, base+"/confirm", "c1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeJSON[ErrorResponse](t, rec).Missing, "Confirmation code")

	rec = api.do(http.MethodPut, base+"/contact", "c1", ContactRequestDTO{Method: "sms", PhoneNumber: "+21612345678"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, base+"/send-code", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "code_sent", string(decodeJSON[checkout.View](t, rec).Status))

	rec = api.do(http.MethodPut, base+"/code", "c1", CodeRequestDTO{Code: "123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPut, base+"/payment", "c1", PaymentRequestDTO{CardNumber: "4242", CVC: "123", ExpirationDate: "12/30"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "4242", "card number is never echoed")

	rec = api.do(http.MethodPost, base+"/confirm", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decodeJSON[checkout.View](t, rec)
	assert.Equal(t, "completed", string(done.Status))
	assert.Equal(t, notify.MsgEmailSent, done.Message)

	rec = api.do(http.MethodGet, "/api/v1/cart", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[CartResponseDTO](t, rec).Items)

	rec = api.do(http.MethodPost, base+"/confirm", "c1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_PaymentRejected(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 2})
	api.gw.verifyErr = &gateway.Error{Op: "verify_code", Kind: gateway.KindRejected, Status: 400, Message: "Code invalide."}
	api.login("c1")

	rec := api.do(http.MethodPost, "/api/v1/checkout", "c1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/checkout/" + decodeJSON[checkout.View](t, rec).ID.String()

	api.do(http.MethodPut, base+"/contact", "c1", ContactRequestDTO{Method: "email"})
	api.do(http.MethodPost, base+"/send-code", "c1", nil)
	api.do(http.MethodPut, base+"/code", "c1", CodeRequestDTO{Code: "000000"})
	api.do(http.MethodPut, base+"/payment", "c1", PaymentRequestDTO{CardNumber: "4242", CVC: "123", ExpirationDate: "12/30"})

	rec = api.do(http.MethodPost, base+"/confirm", "c1", nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "payment_failed", resp.Code)
	assert.Equal(t, "rejected", resp.Details)
	assert.Equal(t, "Payment failed: Code invalide.", resp.Error)

	rec = api.do(http.MethodGet, base, "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", string(decodeJSON[checkout.View](t, rec).Status))
}

func TestCheckout_BadIDAndUnknown(t *testing.T) {
	api := newTestAPI(t)
	api.login("c1")

	rec := api.do(http.MethodGet, "/api/v1/checkout/not-a-uuid", "c1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/checkout/8f14e45f-ceea-467f-a8f0-5c1a9b3e2d10", "c1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_InvalidContactMethod(t *testing.T) {
	api := newTestAPI(t, seed{"a", 10, 1})
	api.login("c1")

	rec := api.do(http.MethodPost, "/api/v1/checkout", "c1", nil)
	base := "/api/v1/checkout/" + decodeJSON[checkout.View](t, rec).ID.String()

	rec = api.do(http.MethodPut, base+"/contact", "c1", ContactRequestDTO{Method: "fax"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/api/v1/cart", "c1", nil)

	rec := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_bff_http_requests_total")
}
